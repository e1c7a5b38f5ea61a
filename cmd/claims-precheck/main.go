package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/claims-precheck/internal/claim"
	"github.com/zombor/claims-precheck/internal/decision"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// defaultEndpoint is for local experimentation only; set API_ENDPOINT in deployments
const defaultEndpoint = "https://medicaid.westus.cloudapp.azure.com/DecisionService/rest/v1/ClaimsAdj/1.0/dateCheck/1.14"

// Placeholder credentials used when none are configured
const (
	placeholderUsername = "your_username"
	placeholderPassword = "your_password"
)

// usingPlaceholderCredentials reports whether either decision service credential
// was left at its placeholder value, whatever the source (flag, env or .env).
func usingPlaceholderCredentials(user, pass string) bool {
	return user == placeholderUsername || pass == placeholderPassword
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// A missing .env file is normal; real environment variables still apply
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	fs := ff.NewFlagSet("claims-precheck")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		apiEndpoint = fs.StringLong("api-endpoint", defaultEndpoint, "Decision service URL (API_ENDPOINT)")
		apiUser     = fs.StringLong("api-username", placeholderUsername, "Decision service basic auth username (API_USERNAME)")
		apiPass     = fs.StringLong("api-password", placeholderPassword, "Decision service basic auth password (API_PASSWORD)")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username for the UI (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password for the UI (optional)")
		auditDB     = fs.StringLong("audit-db", "", "BoltDB file for the decision audit log (optional)")
		sessionTTL  = fs.DurationLong("session-ttl", claim.DefaultSessionTTL, "Idle time after which a session is discarded (0 keeps sessions until the cap is reached)")
		maxSessions = fs.IntLong("max-sessions", claim.DefaultMaxSessions, "Maximum live sessions; the least recently used is dropped beyond this")
		secure      = fs.BoolLong("secure-cookie", "Mark the session cookie Secure (set when served over HTTPS)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVars(),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	slog.Info("App started", "version", version)

	if usingPlaceholderCredentials(*apiUser, *apiPass) {
		slog.Warn("Decision service credentials not set, using placeholder defaults")
	}

	client, err := decision.NewClient(*apiEndpoint, *apiUser, *apiPass)
	if err != nil {
		slog.Error("Failed to initialize decision service client", "error", err)
		os.Exit(1)
	}
	slog.Info("Decision service configured", "endpoint", client.Endpoint())

	// Initialize audit log
	var audit claim.AuditLog = claim.NopAuditLog{}
	if *auditDB != "" {
		slog.Info("Initializing audit log...", "path", *auditDB)
		db, err := claim.NewBoltDB(*auditDB)
		if err != nil {
			slog.Error("Failed to initialize audit log", "error", err)
			os.Exit(1)
		}
		audit = db
	}
	defer audit.Close()

	service := claim.NewService(client, audit)
	sessions := claim.NewSessionStore(*sessionTTL, claim.WithMaxSessions(*maxSessions))

	basicAuth := claim.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := claim.NewServer(service, sessions, basicAuth)
	server.SecureCookie = *secure

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
