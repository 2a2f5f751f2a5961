// Package serve implements the HTTP render playground.
package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/broady/typepoet/poet"
	"github.com/broady/typepoet/poet/codewriter"
	"github.com/broady/typepoet/typespec"
)

var (
	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// maxDocumentSize bounds POST /document bodies.
const maxDocumentSize = 1 << 20

type Cmd struct {
	Port        int      `help:"Port to listen on." default:"9000" short:"p"`
	CORSOrigins []string `help:"Origin allowed to call the playground from a browser (repeatable, * for any)." name:"cors-origin"`
}

func (c *Cmd) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	addr := fmt.Sprintf("localhost:%d", c.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           CORS(c.CORSOrigins, NewHandler(logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", slog.Any("error", err))
		}
	}()

	fmt.Printf("typepoet serve listening on http://%s\n", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RenderRequest is the query of GET /render.
type RenderRequest struct {
	// Class is the canonical name of the rendered class.
	Class string `schema:"class" validate:"required_unless=Wildcard star"`

	// Args are canonical class names applied as type arguments.
	Args []string `schema:"arg" validate:"max=16,dive,required"`

	// Wildcard projects the type: "out", "in" or "star".
	Wildcard string `schema:"wildcard" validate:"omitempty,oneof=out in star"`

	// Annotations are canonical annotation class names.
	Annotations []string `schema:"annotation" validate:"max=16,dive,required"`

	// Package is the Kotlin package the type is rendered in.
	Package string `schema:"package"`
}

// Rendered is one rendered type.
type Rendered struct {
	Name    string        `json:"name,omitempty"`
	Kotlin  string        `json:"kotlin"`
	Imports []string      `json:"imports"`
	Type    poet.TypeName `json:"type"`
}

// DocumentResponse is the result of POST /document.
type DocumentResponse struct {
	Types []Rendered `json:"types"`
}

type server struct {
	logger *slog.Logger
}

// NewHandler returns the playground handler. A nil logger uses
// slog.Default().
//
//	GET  /render?class=kotlin.collections.List&arg=kotlin.String&wildcard=out
//	POST /document?package=com.acme   (body: a JSON type-spec document)
func NewHandler(logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &server{logger: logger}
	mux := http.NewServeMux()
	mux.Handle("/render", s.endpoint("render", http.MethodGet, s.render))
	mux.Handle("/document", s.endpoint("document", http.MethodPost, s.document))
	mux.Handle("/", s.endpoint("notfound", "", func(_ http.ResponseWriter, r *http.Request) (any, error) {
		return nil, Errorf(CodeNotFound, "no endpoint at %s", r.URL.Path)
	}))
	return mux
}

// endpoint adapts fn to http.Handler: it enforces the method, logs the
// call and writes the JSON result or error envelope.
func (s *server) endpoint(name, method string, fn func(w http.ResponseWriter, r *http.Request) (any, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		start := time.Now()
		s.logger.InfoContext(ctx, "request started",
			slog.String("endpoint", name),
		)

		var (
			res any
			err error
		)
		if method != "" && r.Method != method {
			w.Header().Set("Allow", method)
			err = Errorf(CodeMethodNotAllowed, "%s requires %s", name, method)
		} else {
			res, err = fn(w, r)
		}
		duration := time.Since(start)

		if err != nil {
			s.logger.ErrorContext(ctx, "request failed",
				slog.String("endpoint", name),
				slog.Duration("duration", duration),
				slog.Any("error", err),
			)
			writeError(w, toError(err), s.logger)
			return
		}
		s.logger.InfoContext(ctx, "request completed",
			slog.String("endpoint", name),
			slog.Duration("duration", duration),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			s.logger.Error("failed to encode response", slog.Any("error", err))
		}
	})
}

func (s *server) render(_ http.ResponseWriter, r *http.Request) (any, error) {
	var req RenderRequest
	if err := schemaDecoder.Decode(&req, r.URL.Query()); err != nil {
		return nil, Errorf(CodeInvalidArgument, "failed to decode query: %v", err)
	}
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	t, err := req.typeName()
	if err != nil {
		return nil, err
	}
	return renderOne("", req.Package, t)
}

// typeName builds the requested type. Annotations apply to the class, or
// to the wildcard itself for wildcard=star.
func (req *RenderRequest) typeName() (poet.TypeName, error) {
	var anns []poet.Annotation
	for _, a := range req.Annotations {
		c, err := guess("annotation", a)
		if err != nil {
			return nil, err
		}
		anns = append(anns, poet.AnnotationOf(c))
	}

	if req.Wildcard == "star" {
		if req.Class != "" || len(req.Args) > 0 {
			return nil, Errorf(CodeInvalidArgument, "class: not allowed with wildcard=star")
		}
		return poet.Star().Annotated(anns...), nil
	}

	c, err := guess("class", req.Class)
	if err != nil {
		return nil, err
	}
	var t poet.TypeName = c
	if len(req.Args) > 0 {
		args := make([]poet.TypeName, len(req.Args))
		for i, a := range req.Args {
			if args[i], err = guess("arg", a); err != nil {
				return nil, err
			}
		}
		if t, err = poet.NewParameterized(c, args...); err != nil {
			return nil, err
		}
	}
	if len(anns) > 0 {
		t = t.Annotated(anns...)
	}

	switch req.Wildcard {
	case "out":
		return poet.SubtypeOf(t), nil
	case "in":
		return poet.SupertypeOf(t), nil
	}
	return t, nil
}

func guess(field, name string) (*poet.ClassName, error) {
	c, err := poet.BestGuess(name)
	if err != nil {
		return nil, Errorf(CodeInvalidArgument, "%s: %v", field, err)
	}
	return c, nil
}

func (s *server) document(w http.ResponseWriter, r *http.Request) (any, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, Errorf(CodeTooLarge, "document exceeds %d bytes", tooLarge.Limit)
		}
		return nil, err
	}
	doc, err := typespec.ParseJSON(data)
	if err != nil {
		return nil, Errorf(CodeInvalidArgument, "%v", err)
	}
	resolved, err := doc.Resolve()
	if err != nil {
		return nil, err
	}
	pkg := r.URL.Query().Get("package")
	res := &DocumentResponse{Types: []Rendered{}}
	for _, n := range resolved.Types {
		out, err := renderOne(n.Name, pkg, n.Type)
		if err != nil {
			return nil, err
		}
		res.Types = append(res.Types, *out)
	}
	return res, nil
}

func renderOne(name, pkg string, t poet.TypeName) (*Rendered, error) {
	text, imports, err := codewriter.RenderType(pkg, t)
	if err != nil {
		return nil, err
	}
	if imports == nil {
		imports = []string{}
	}
	return &Rendered{Name: name, Kotlin: text, Imports: imports, Type: t}, nil
}
