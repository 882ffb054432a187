package e2etest

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/myrjola/gymplan/internal/logging"

	_ "github.com/mattn/go-sqlite3" // the DSN logged by the server is opened with the sqlite3 driver.
)

// Server is an application server started for end-to-end tests.
type Server struct {
	url        string
	client     *Client
	db         *sql.DB
	cancel     context.CancelCauseFunc
	serverDone chan struct{}
}

// LogAddrKey is the key used to log the address the server is listening on.
const LogAddrKey = "addr"

// LogDsnKey is the data source name key used to log the SQL DSN.
const LogDsnKey = "sqlDsn"

// RunFunc starts the application and blocks until ctx is cancelled. It has the signature of the run function in
// cmd/web.
type RunFunc func(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error

// startupValues collects the values the server logs while starting: the listen address and the database DSN.
type startupValues struct {
	addr chan string
	dsn  chan string
}

// logger returns a logger writing to logSink that also captures the startup values.
func (v startupValues) logger(logSink io.Writer) *slog.Logger {
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case LogAddrKey:
				v.offer(v.addr, a.Value.String())
			case LogDsnKey:
				v.offer(v.dsn, a.Value.String())
			}
			return a
		},
	})))
}

// offer keeps the first logged value and drops later ones.
func (v startupValues) offer(ch chan string, value string) {
	select {
	case ch <- value:
	default:
	}
}

func (v startupValues) await(ctx context.Context) (string, string, error) {
	var addr, dsn string
	for addr == "" || dsn == "" {
		select {
		case <-ctx.Done():
			return "", "", fmt.Errorf("server did not start: %w", context.Cause(ctx))
		case addr = <-v.addr:
		case dsn = <-v.dsn:
		}
	}
	return addr, dsn, nil
}

// StartServer starts the application with run, waits until it is healthy, and stops it when the test ends.
//
// logSink receives the server logs. You usually want to use testhelpers.NewWriter.
// lookupEnv has the same signature as [os.LookupEnv]. Use it to point the server at localhost:0 and an in-memory
// database. The server must log its address to LogAddrKey and its database DSN to LogDsnKey.
func StartServer(t *testing.T, logSink io.Writer, lookupEnv func(string) (string, bool), run RunFunc) (*Server, error) {
	ctx, cancel := context.WithCancelCause(t.Context())
	serverDone := make(chan struct{})
	values := startupValues{addr: make(chan string, 1), dsn: make(chan string, 1)}

	go func() {
		defer close(serverDone)
		if err := run(ctx, values.logger(logSink), lookupEnv); err != nil {
			cancel(err)
		}
	}()

	server := &Server{
		url:        "",
		client:     nil,
		db:         nil,
		cancel:     cancel,
		serverDone: serverDone,
	}
	t.Cleanup(server.Shutdown)

	addr, dsn, err := values.await(ctx)
	if err != nil {
		return nil, err
	}
	server.url = fmt.Sprintf("http://%s", addr)
	if server.client, err = server.NewClient(); err != nil {
		return nil, err
	}
	if err = server.client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return nil, fmt.Errorf("wait for ready: %w", err)
	}
	if server.db, err = sql.Open("sqlite3", dsn); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return server, nil
}

// Client returns the client created with the server. Tests with a single user only need this one.
func (s *Server) Client() *Client {
	return s.client
}

// NewClient returns a client with its own cookie jar and authenticator, acting as a separate user.
func (s *Server) NewClient() (*Client, error) {
	client, err := NewClient(s.url, "localhost", "http://localhost:0")
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	return client, nil
}

func (s *Server) URL() string {
	return s.url
}

// DB returns a connection to the server's database for inspecting persisted state.
func (s *Server) DB() *sql.DB {
	return s.db
}

// Shutdown cancels the server's context and waits for run to return.
func (s *Server) Shutdown() {
	s.cancel(nil)
	<-s.serverDone
	if s.db != nil {
		_ = s.db.Close()
	}
}
