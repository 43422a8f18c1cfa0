package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
)

// Transport selects the mechanism used to expose the MCP server.
type Transport string

const (
	// TransportHTTP serves MCP via the streamable HTTP transport.
	TransportHTTP Transport = "http"
	// TransportStdio serves MCP over stdio.
	TransportStdio Transport = "stdio"
)

// HealthPath reports the server identity and the board counts of the
// signed in user.
const HealthPath = "/healthz"

const instructions = `Read and change the signed in user's planner tasks.
Tasks have a title, an optional description and due date, and a status of todo, in_progress or done.
Use interpret to turn free text into suggested tasks, then list_items and approve_item to create them.
Approval creates the task on the server; nothing is created by interpret alone.`

// Runner coordinates MCP server startup.
type Runner struct {
	API     API
	Name    string
	Version string
	Logger  *slog.Logger

	Transport        Transport
	HTTPListenAddr   string
	HTTPEndpointPath string
	OnHTTPListening  func(net.Addr)
	HTTPServerCert   string
	HTTPServerKey    string

	// Stdin and Stdout default to the process streams for TransportStdio.
	Stdin  io.Reader
	Stdout io.Writer
}

// Do executes the runner until ctx is done or the transport fails.
func (r Runner) Do(ctx context.Context) error {
	if r.API == nil {
		return errors.New("mcp runner requires the planner api")
	}
	svc := NewService(r.API)
	srv := r.newServer(svc)

	switch t := r.Transport; t {
	case "", TransportHTTP:
		return r.serveHTTP(ctx, srv, svc)
	case TransportStdio:
		return r.serveStdio(ctx, srv)
	default:
		return fmt.Errorf("unknown MCP transport %q", t)
	}
}

func (r Runner) newServer(svc *Service) *server.MCPServer {
	name := r.Name
	if name == "" {
		name = "planner"
	}
	version := r.Version
	if version == "" {
		version = "dev"
	}
	srv := server.NewMCPServer(
		fmt.Sprintf("%s MCP", name),
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions(instructions),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)
	registerResources(srv, svc)
	registerTools(srv, svc)
	return srv
}

func (r Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (r Runner) serveStdio(ctx context.Context, srv *server.MCPServer) error {
	in, out := r.Stdin, r.Stdout
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	r.logger().Info("mcp: serving on stdio")
	err := server.NewStdioServer(srv).Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// NewRouter mounts the MCP handler at path next to the health route.
func NewRouter(mcpHandler http.Handler, path string, svc *Service, name, version string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Any(path, gin.WrapH(mcpHandler))
	router.GET(HealthPath, func(c *gin.Context) {
		sum, err := svc.Summary(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "name": name, "version": version, "tasks": sum})
	})
	return router
}

func endpointPath(raw string) string {
	path := strings.TrimSpace(raw)
	if path == "" {
		return "/mcp"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer, svc *Service) error {
	if (r.HTTPServerCert == "") != (r.HTTPServerKey == "") {
		return errors.New("both http tls cert and key must be provided")
	}
	log := r.logger()

	path := endpointPath(r.HTTPEndpointPath)
	listenAddr := r.HTTPListenAddr
	if listenAddr == "" {
		listenAddr = "127.0.0.1:8080"
	}

	httpSrv := &http.Server{
		Handler:           NewRouter(server.NewStreamableHTTPServer(srv), path, svc, r.Name, r.Version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("mcp: listen %s: %w", listenAddr, err)
	}
	log.Info("mcp: serving over http", "addr", ln.Addr().String(), "path", path, "tls", r.HTTPServerCert != "")
	if r.OnHTTPListening != nil {
		r.OnHTTPListening(ln.Addr())
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	if r.HTTPServerCert != "" {
		err = httpSrv.ServeTLS(ln, r.HTTPServerCert, r.HTTPServerKey)
	} else {
		err = httpSrv.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
