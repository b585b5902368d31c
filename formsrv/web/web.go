package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/G-Node/formsrv/templates"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Page parses the layout together with the given content template.
func Page(content string) (*template.Template, error) {
	tmpl := template.New("layout")
	tmpl, err := tmpl.Parse(templates.Layout)
	if err != nil {
		return nil, err
	}
	return tmpl.Parse(content)
}

// Render executes the layout with the given content template and data and
// writes the page with the given status code.  Nothing is written if
// rendering fails.
func (ws *Server) Render(w http.ResponseWriter, status int, content string, data map[string]interface{}) error {
	tmpl, err := Page(content)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

// ErrorResponse renders an error page with the given message, returning the
// given status code to the user.
func (ws *Server) ErrorResponse(w http.ResponseWriter, status int, message string) {
	errinfo := map[string]interface{}{
		"title":      http.StatusText(status),
		"StatusCode": status,
		"StatusText": http.StatusText(status),
		"Message":    message,
	}
	if err := ws.Render(w, status, templates.Fail, errinfo); err != nil {
		ws.log.Error("Error rendering fail page", zap.Error(err))
		w.WriteHeader(status)
		w.Write([]byte(message))
	}
}

// Server implements the web server for the form service.
type Server struct {
	*http.Server
	Router *mux.Router
	log    *zap.Logger
}

// New returns a web Server listening on the given port with an initialised
// mux.Router and http.Server.
func New(port uint16, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := new(Server)
	srv.log = logger
	srv.Router = new(mux.Router)
	httpsrv := new(http.Server)
	httpsrv.Handler = srv.Router

	httpsrv.Addr = fmt.Sprintf(":%d", port)
	httpsrv.WriteTimeout = time.Second * 15
	httpsrv.ReadTimeout = time.Second * 15
	httpsrv.IdleTimeout = time.Second * 60
	srv.Server = httpsrv
	return srv
}

// SetLogger replaces the logger of the server.
func (ws *Server) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ws.log = logger
}

// Start starts the embedded web server's ListenAndServe method in a goroutine
// and returns.  This method does not block; formsrv.Service.Run blocks until
// its context is done.
func (ws *Server) Start() {
	go func() {
		if err := ws.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ws.log.Error("Web server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully stops the web service.
func (ws *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	// Gracefully shut down, waiting for the timeout deadline for connections to close.
	if err := ws.Shutdown(ctx); err != nil {
		ws.log.Warn("Web server shutdown incomplete", zap.Error(err))
	}
}
