package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brewks/ga-maintenance/config"
	"github.com/brewks/ga-maintenance/database"
	"github.com/brewks/ga-maintenance/export"
	"github.com/brewks/ga-maintenance/generator"
	"github.com/brewks/ga-maintenance/logger"
	"github.com/brewks/ga-maintenance/modelmetrics"
	"github.com/brewks/ga-maintenance/models"
	"github.com/brewks/ga-maintenance/observability/metrics"
)

func main() {
	if len(os.Args) < 2 {
		showHelp()
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "help":
		showHelp()
		return
	case "metrics:validate":
		if len(args) < 1 {
			fmt.Println("Error: metrics JSON required")
			fmt.Println(`Usage: ga-maintenance metrics:validate '{"precision":0.9,...}'`)
			os.Exit(2)
		}
		validateMetricsCommand(args[0])
		return
	}

	cfg := loadConfig()

	if needsLogging(command) {
		if err := logger.Init(cfg); err != nil {
			log.Fatalf("Failed to initialize logging: %v", err)
		}
		defer func() {
			if err := logger.Close(); err != nil {
				log.Fatalf("Failed to close logging: %v", err)
			}
		}()
		logger.LogCommand(os.Args[0], os.Args)
	}

	switch command {
	case "connect":
		connectCommand(cfg)
	case "migrate":
		migrateCommand(cfg)
	case "migrate:create":
		if len(args) < 1 {
			fmt.Println("Error: migration name required")
			fmt.Println("Usage: ga-maintenance migrate:create <migration_name>")
			return
		}
		createMigrationCommand(cfg, args[0])
	case "migrate:status":
		migrationStatusCommand(cfg)
	case "db:info":
		dbInfoCommand(cfg)
	case "generate":
		generateCommand(cfg, args)
	case "report":
		reportCommand(cfg)
	case "export:csv", "export:xlsx":
		exportCommand(cfg, strings.TrimPrefix(command, "export:"), args)
	case "metrics:export":
		if len(args) < 2 {
			fmt.Println("Error: model id and output file required")
			fmt.Println("Usage: ga-maintenance metrics:export <model_id> <file.json>")
			return
		}
		exportMetricsCommand(cfg, args[0], args[1])
	default:
		fmt.Printf("Unknown command: %s\n", command)
		showHelp()
	}
}

// needsLogging determines which commands write to the session log
func needsLogging(command string) bool {
	switch command {
	case "connect", "migrate", "migrate:create", "migrate:status", "generate", "report",
		"export:csv", "export:xlsx", "metrics:export":
		return true
	}
	return false
}

func showHelp() {
	fmt.Println("GA Maintenance - Synthetic sensor data and dashboard store tool")
	fmt.Println("")
	fmt.Println("Usage: ga-maintenance <command> [arguments]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  connect                          Test database connection")
	fmt.Println("  migrate                          Auto-migrate models (if enabled) and run pending SQL migrations")
	fmt.Println("  migrate:create <name>            Create a new migration file")
	fmt.Println("  migrate:status                   Show migration status")
	fmt.Println("  db:info                          Show database information")
	fmt.Println("  generate [flags]                 Generate and store synthetic degrading sensor data")
	fmt.Println("      -components N -records N -mode accelerated|linear -seed N -params a,b,c")
	fmt.Println("  report                           Summarize stored sensor series")
	fmt.Println("  export:csv [flags] <file>        Export sensor readings as CSV")
	fmt.Println("  export:xlsx [flags] <file>       Export sensor readings and series summary as XLSX")
	fmt.Println("      -component N -parameter name -unhealthy -limit N")
	fmt.Println("  metrics:validate <json>          Check a performance metrics JSON document")
	fmt.Println("  metrics:export <model_id> <file> Write a model's performance metrics as JSON")
	fmt.Println("  help                             Show this help message")
	fmt.Println("")
	fmt.Println("Configuration:")
	fmt.Println("  Edit config.yaml; GA_DB_DRIVER, GA_SQLITE_PATH and GA_LOG_LEVEL (or .env) override it")
}

func loadConfig() *config.Config {
	path := os.Getenv("GA_CONFIG")
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

// fatal releases the store connection before exiting
func fatal(format string, v ...interface{}) {
	if err := database.Close(); err != nil {
		logger.Errorf("Failed to close database: %v", err)
	}
	logger.Fatalf(format, v...)
}

func connectCommand(cfg *config.Config) {
	logger.Println("Testing database connection...")

	if _, err := database.Connect(cfg); err != nil {
		fatal("Connection failed: %v", err)
	}
	defer database.Close()

	logger.Printf("✓ Successfully connected to %s database\n", cfg.Database.Driver)

	infoJSON, _ := json.MarshalIndent(database.GetDatabaseInfo(cfg), "", "  ")
	logger.Printf("Connection info: %s\n", infoJSON)
}

func migrateCommand(cfg *config.Config) {
	logger.Println("Running database migrations...")

	db, err := database.Connect(cfg)
	if err != nil {
		fatal("Failed to connect to database: %v", err)
	}
	defer database.Close()

	runner := database.NewMigrationRunner(db, cfg)
	if cfg.Migration.AutoMigrate {
		if err := runner.AutoMigrate(models.GetAllModels()...); err != nil {
			fatal("Auto-migration failed: %v", err)
		}
	}
	if err := runner.RunMigrations(); err != nil {
		fatal("Migration failed: %v", err)
	}
}

func createMigrationCommand(cfg *config.Config, name string) {
	logger.Printf("Creating migration: %s\n", name)

	runner := database.NewMigrationRunner(nil, cfg)
	filePath, err := runner.CreateMigration(name)
	if err != nil {
		logger.Fatalf("Failed to create migration: %v", err)
	}

	logger.Printf("✓ Migration created: %s\n", filePath)
}

func migrationStatusCommand(cfg *config.Config) {
	logger.Println("Checking migration status...")

	db, err := database.Connect(cfg)
	if err != nil {
		fatal("Failed to connect to database: %v", err)
	}
	defer database.Close()

	migrations, err := database.NewMigrationRunner(db, cfg).GetMigrationStatus()
	if err != nil {
		fatal("Failed to get migration status: %v", err)
	}

	if len(migrations) == 0 {
		logger.Println("No migrations found")
		return
	}

	logger.Printf("%-20s %-40s %s\n", "Version", "Name", "Status")
	logger.Println(strings.Repeat("-", 67))
	for _, migration := range migrations {
		status := "Pending"
		if migration.Applied {
			status = "Applied"
		}
		logger.Printf("%-20s %-40s %s\n", migration.Version, migration.Name, status)
	}
}

func dbInfoCommand(cfg *config.Config) {
	fmt.Println("Database Information:")
	fmt.Println(strings.Repeat("=", 50))

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	info := database.GetDatabaseInfo(cfg)
	fmt.Printf("Database Type:     %v\n", info["driver"])
	fmt.Printf("Connection Status: %v\n", getConnectionStatusText(info["connected"]))

	switch cfg.Database.Driver {
	case "mysql", "postgres":
		fmt.Printf("Host:              %v\n", info["host"])
		fmt.Printf("Port:              %v\n", info["port"])
		fmt.Printf("Database:          %v\n", info["database"])
	case "sqlite":
		fmt.Printf("File Path:         %v\n", info["path"])
	}

	if info["connected"] != true {
		fmt.Println("\nConnection failed - unable to retrieve detailed information")
		fmt.Println(strings.Repeat("=", 50))
		return
	}

	fmt.Println("\nConnection Pool:")
	fmt.Printf("  Max Connections: %v\n", info["max_open_connections"])
	fmt.Printf("  Open Connections:%v\n", info["open_connections"])
	fmt.Printf("  In Use:          %v\n", info["in_use"])
	fmt.Printf("  Idle:            %v\n", info["idle"])

	stats, err := database.NewSensorStore(db, cfg.Generator.BatchSize).Stats(context.Background())
	if err != nil {
		fmt.Printf("\nSensor data unavailable: %v\n", err)
		fmt.Println(strings.Repeat("=", 50))
		return
	}
	fmt.Println("\nSensor Data:")
	fmt.Printf("  Total Readings:  %d\n", stats.Readings)
	fmt.Printf("  Components:      %d\n", stats.Components)
	fmt.Printf("  Parameters:      %d\n", stats.Parameters)
	fmt.Printf("  Unhealthy:       %d\n", stats.Unhealthy)

	fmt.Println(strings.Repeat("=", 50))
}

func getConnectionStatusText(connected interface{}) string {
	if conn, ok := connected.(bool); ok && conn {
		return "✓ Connected"
	}
	return "✗ Disconnected"
}

// generatorOptions builds run options from config, letting command-line flags override it
func generatorOptions(cfg *config.Config, args []string) (generator.Options, int64, error) {
	g := cfg.Generator

	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	components := fs.Int("components", g.ComponentCount, "number of simulated components")
	records := fs.Int("records", g.RecordCount, "samples per component and parameter")
	mode := fs.String("mode", g.Mode, "accelerated or linear")
	seed := fs.Int64("seed", g.Seed, "random seed (0 picks one from the clock)")
	params := fs.String("params", strings.Join(g.Parameters, ","), "comma separated parameter names")
	if err := fs.Parse(args); err != nil {
		return generator.Options{}, 0, err
	}

	overrides := make(map[generator.Parameter]float64, len(g.ThresholdOverrides))
	for name, t := range g.ThresholdOverrides {
		overrides[generator.Parameter(name)] = t
	}

	var names []string
	for _, p := range strings.Split(*params, ",") {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}

	opts := generator.Options{
		Parameters:         generator.ParseParameters(names),
		ComponentCount:     *components,
		RecordCount:        *records,
		Mode:               generator.Mode(*mode),
		DisableNoise:       g.DisableNoise,
		Workers:            g.Workers,
		ThresholdOverrides: overrides,
	}

	runSeed := *seed
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
	}
	return opts, runSeed, nil
}

func generateCommand(cfg *config.Config, args []string) {
	opts, seed, err := generatorOptions(cfg, args)
	if err != nil {
		logger.Fatalf("Invalid generate arguments: %v", err)
	}

	gen, err := generator.New(opts, seed, logger.L())
	if err != nil {
		logger.Fatalf("Invalid generator configuration: %v", err)
	}
	for _, p := range opts.Parameters {
		if !p.Monitored() {
			logger.Warnf("Parameter %s has no table entry; using unit %s, threshold %.0f, interval %s\n",
				p, generator.DefaultUnit, generator.DefaultThreshold, generator.DefaultSamplingInterval)
		}
	}

	db, err := database.Connect(cfg)
	if err != nil {
		fatal("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if cfg.Migration.AutoMigrate {
		if err := database.NewMigrationRunner(db, cfg).AutoMigrate(models.GetAllModels()...); err != nil {
			fatal("Auto-migration failed: %v", err)
		}
	}

	metrics.Init()
	logger.Printf("Generating %d component(s) x %d parameter(s) x %d record(s) in %s mode (seed %d)\n",
		opts.ComponentCount, len(opts.Parameters), opts.RecordCount, gen.Options().Mode, seed)

	res, err := gen.Run(context.Background(), database.NewSensorStore(db, cfg.Generator.BatchSize))
	if err != nil {
		logger.LogResult("generate", false, err.Error())
		flushMetrics(cfg)
		fatal("Generation failed: %v", err)
	}

	for _, plan := range res.Components {
		logger.Debugf("Component %d: tail %s, failure point %d\n", plan.ComponentID, plan.TailNumber, plan.FailurePoint)
	}
	logger.Printf("✅ %s\n", res.Message)
	logger.LogResult("generate", true, fmt.Sprintf("%d unhealthy readings in %v", res.Unhealthy, res.Duration))

	flushMetrics(cfg)
}

// flushMetrics writes the metrics textfile when one is configured
func flushMetrics(cfg *config.Config) {
	if cfg.Metrics.Textfile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		logger.Warnf("Failed to write metrics textfile %s: %v\n", cfg.Metrics.Textfile, err)
	}
}

func reportCommand(cfg *config.Config) {
	db, err := database.Connect(cfg)
	if err != nil {
		fatal("Failed to connect to database: %v", err)
	}
	defer database.Close()

	summaries, err := database.NewSensorStore(db, cfg.Generator.BatchSize).SeriesSummaries(context.Background())
	if err != nil {
		fatal("Failed to summarize sensor data: %v", err)
	}
	if len(summaries) == 0 {
		logger.Println("No sensor data found")
		return
	}

	logger.Printf("%-6s %-8s %-20s %-6s %8s %10s %8s %8s %-19s %-19s\n",
		"Comp", "Tail", "Parameter", "Unit", "Rows", "Unhealthy", "Min", "Max", "First", "Last")
	logger.Println(strings.Repeat("-", 124))
	for _, s := range summaries {
		logger.Printf("%-6d %-8s %-20s %-6s %8d %10d %8.2f %8.2f %-19s %-19s\n",
			s.ComponentID, s.TailNumber, s.Parameter, s.Unit, s.TotalRows, s.UnhealthyRows,
			s.MinValue, s.MaxValue, s.FirstTimestamp, s.LastTimestamp)
	}
}

func exportCommand(cfg *config.Config, format string, args []string) {
	fs := flag.NewFlagSet("export:"+format, flag.ContinueOnError)
	component := fs.Int("component", 0, "only this component id")
	parameter := fs.String("parameter", "", "only this parameter")
	unhealthy := fs.Bool("unhealthy", false, "only readings below threshold")
	limit := fs.Int("limit", 0, "maximum number of readings")
	if err := fs.Parse(args); err != nil || fs.NArg() < 1 {
		logger.Fatalf("Usage: ga-maintenance export:%s [-component N] [-parameter name] [-unhealthy] [-limit N] <file>", format)
	}
	path := fs.Arg(0)

	metrics.Init()
	db, err := database.Connect(cfg)
	if err != nil {
		fatal("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	store := database.NewSensorStore(db, cfg.Generator.BatchSize)
	readings, err := store.Readings(ctx, database.ReadingFilter{
		ComponentID:   *component,
		Parameter:     *parameter,
		UnhealthyOnly: *unhealthy,
		Limit:         *limit,
	})
	if err != nil {
		fatal("Failed to load sensor readings: %v", err)
	}

	out, err := os.Create(path)
	if err != nil {
		fatal("Failed to create %s: %v", path, err)
	}
	defer out.Close()

	switch format {
	case "csv":
		err = export.WriteReadingsCSV(out, readings)
	case "xlsx":
		var summaries []database.SeriesSummary
		summaries, err = store.SeriesSummaries(ctx)
		if err == nil {
			err = export.WriteReadingsXLSX(out, readings, summaries)
		}
	}
	if err != nil {
		metrics.IncExport(format, metrics.ResultError)
		flushMetrics(cfg)
		fatal("Export failed: %v", err)
	}

	metrics.IncExport(format, metrics.ResultSuccess)
	flushMetrics(cfg)
	logger.Printf("✓ Exported %d readings to %s\n", len(readings), path)
}

func validateMetricsCommand(raw string) {
	if !modelmetrics.Validate(raw) {
		fmt.Printf("✗ Invalid or missing required fields (%s)\n", strings.Join(modelmetrics.RequiredFields, ", "))
		os.Exit(1)
	}
	fmt.Println("✓ Valid performance metrics JSON")
}

func exportMetricsCommand(cfg *config.Config, idArg, path string) {
	id, err := strconv.ParseUint(idArg, 10, 64)
	if err != nil {
		logger.Fatalf("Invalid model id %q: %v", idArg, err)
	}

	metrics.Init()
	db, err := database.Connect(cfg)
	if err != nil {
		fatal("Failed to connect to database: %v", err)
	}
	defer database.Close()

	model, err := database.NewModelStore(db).GetModel(context.Background(), uint(id))
	if err != nil {
		fatal("Failed to load model: %v", err)
	}

	m, err := modelmetrics.Parse(string(model.PerformanceMetrics))
	if err != nil {
		fatal("Model %d has invalid performance metrics: %v", model.ModelID, err)
	}

	out, err := os.Create(path)
	if err != nil {
		fatal("Failed to create %s: %v", path, err)
	}
	defer out.Close()

	if err := export.WriteMetricsJSON(out, m); err != nil {
		metrics.IncExport("json", metrics.ResultError)
		flushMetrics(cfg)
		fatal("Export failed: %v", err)
	}
	metrics.IncExport("json", metrics.ResultSuccess)
	flushMetrics(cfg)

	p := m.Percentages()
	logger.Printf("✓ %s (%s): precision %.1f%%, recall %.1f%%, accuracy %.1f%%, F1 %.1f%% -> %s\n",
		model.ModelName, model.ModelType, p[0], p[1], p[2], p[3], path)
}
