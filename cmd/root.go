package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Amitav-Krishna/dynamic-media-kits/internal/config"
	"github.com/Amitav-Krishna/dynamic-media-kits/internal/database"
	_ "github.com/Amitav-Krishna/dynamic-media-kits/internal/database/mysql"
	_ "github.com/Amitav-Krishna/dynamic-media-kits/internal/database/postgres"
	_ "github.com/Amitav-Krishna/dynamic-media-kits/internal/database/sqlserver"
)

var (
	configFile   string
	geminiAPIKey string

	// Database connection flags
	dialect                        string
	host                           string
	port                           int
	username                       string
	password                       string
	dbName                         string
	cloudSQLInstanceConnectionName string
	cloudSQLUsePrivateIP           bool
)

var rootCmd = &cobra.Command{
	Use:   "media-kits",
	Short: "Influencer media kit service with chart-generating chat analytics",
	Long: `media-kits serves the talent agency API: influencer profiles, keyword
post search, and a chat endpoint that turns natural-language questions into
read-only SQL and rendered charts.`,
	PersistentPreRunE: initFlagsAndConfig,
}

// initFlagsAndConfig loads the config file and environment, then overlays
// any explicitly set command flags.
func initFlagsAndConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cmd != nil {
		flags := cmd.Flags()
		if flags.Changed("dialect") {
			cfg.Database.Dialect = dialect
		}
		if flags.Changed("host") {
			cfg.Database.Host = host
		}
		if flags.Changed("port") {
			cfg.Database.Port = port
		}
		if flags.Changed("username") {
			cfg.Database.User = username
		}
		if flags.Changed("password") {
			cfg.Database.Password = password
		}
		if flags.Changed("database") {
			cfg.Database.DBName = dbName
		}
		if flags.Changed("cloudsql-instance-connection-name") {
			cfg.Database.CloudSQLInstanceConnectionName = cloudSQLInstanceConnectionName
		}
		if flags.Changed("cloudsql-use-private-ip") {
			cfg.Database.UsePrivateIP = cloudSQLUsePrivateIP
		}
	}

	if geminiAPIKey == "" {
		geminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if geminiAPIKey != "" {
		cfg.LLM.APIKey = geminiAPIKey
	}

	config.SetConfig(cfg)
	return nil
}

func validateDialect(dialect string) error {
	supportedDialects := []string{"postgres", "cloudsqlpostgres", "mysql", "cloudsqlmysql", "sqlserver", "cloudsqlsqlserver"}
	for _, supportedDialect := range supportedDialects {
		if dialect == supportedDialect {
			return nil
		}
	}
	return fmt.Errorf("unsupported dialect: %s (only %s are supported)", dialect, strings.Join(supportedDialects, ", "))
}

func setupDatabase() (*database.DB, error) {
	cfg := config.GetConfig()
	if cfg == nil {
		return nil, fmt.Errorf("configuration is not initialized")
	}
	db, err := database.New(cfg.Database)
	if err != nil {
		log.Println("ERROR: Failed to connect to database:", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (optional; environment variables with the DMK_ prefix also apply)")

	// Database connection flags
	rootCmd.PersistentFlags().StringVar(&dialect, "dialect", "", fmt.Sprintf("Database dialect (%s)", strings.Join([]string{"postgres", "mysql", "sqlserver", "cloudsqlpostgres", "cloudsqlmysql", "cloudsqlsqlserver"}, ", ")))
	rootCmd.PersistentFlags().StringVar(&host, "host", "", "Database host")
	rootCmd.PersistentFlags().IntVar(&port, "port", 0, "Database port")
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "Database username")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "Database password")
	rootCmd.PersistentFlags().StringVar(&dbName, "database", "", "Database name")
	rootCmd.PersistentFlags().StringVar(&cloudSQLInstanceConnectionName, "cloudsql-instance-connection-name", "", "Cloud SQL instance connection name (for Cloud SQL dialects)")
	rootCmd.PersistentFlags().BoolVar(&cloudSQLUsePrivateIP, "cloudsql-use-private-ip", false, "Use private IP for Cloud SQL connection (Cloud SQL)")

	// Gemini API Key flag
	rootCmd.PersistentFlags().StringVar(&geminiAPIKey, "gemini-api-key", "", "Gemini API key (can also be set via GEMINI_API_KEY environment variable)")

	rootCmd.AddCommand(serveCmd)
}
