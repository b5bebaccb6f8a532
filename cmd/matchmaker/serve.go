package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/matchmaker/auth"
	"github.com/a-h/matchmaker/db"
	"github.com/a-h/matchmaker/gateway"
	chatpost "github.com/a-h/matchmaker/handlers/chat/post"
	profiledelete "github.com/a-h/matchmaker/handlers/profile/delete"
	profileget "github.com/a-h/matchmaker/handlers/profile/get"
	profileput "github.com/a-h/matchmaker/handlers/profile/put"
	summarypost "github.com/a-h/matchmaker/handlers/summary/post"
	"github.com/a-h/matchmaker/persona"
	"github.com/a-h/matchmaker/reqlog"
	"github.com/a-h/matchmaker/summarizer"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/cors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

type ServeCommand struct {
	Provider        string        `help:"The completion API provider." env:"PROVIDER" enum:"openai,ollama" default:"openai"`
	OpenAIAPIKey    string        `help:"The OpenAI API key, required when the provider is openai." env:"OPENAI_API_KEY" default:""`
	OpenAIBaseURL   string        `help:"Override the OpenAI API base URL." env:"OPENAI_BASE_URL" default:""`
	OllamaURL       string        `help:"The URL of the Ollama server." env:"OLLAMA_URL" default:"http://127.0.0.1:11434/"`
	ChatModel       string        `help:"The model to chat with." env:"CHAT_MODEL" default:"gpt-4-turbo-preview"`
	SummaryModel    string        `help:"The model that writes profile summaries." env:"SUMMARY_MODEL" default:"gpt-4o-mini"`
	PersonaFile     string        `help:"A persona file (.yaml, or a plain text prompt). The built-in persona is used if empty." env:"PERSONA_FILE" default:""`
	UpstreamTimeout time.Duration `help:"The maximum time to wait for the completion API." env:"UPSTREAM_TIMEOUT" default:"60s"`
	ListenAddr      string        `help:"The address to listen on." env:"LISTEN_ADDR" default:"localhost:9020"`
	TLSCertFile     string        `help:"The TLS certificate file." env:"TLS_CERT_FILE" default:""`
	TLSKeyFile      string        `help:"The TLS key file." env:"TLS_KEY_FILE" default:""`
	RqliteURL       string        `help:"The URL of the rqlite server used to store profiles. Profiles are disabled if empty." env:"RQLITE_URL" default:""`
	APIKeysFile     string        `help:"A JSON or YAML map of API keys to user names, required for profiles." env:"API_KEYS_FILE" default:""`
	LogLevel        string        `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

var errMissingAPIKey = errors.New("missing OPENAI_API_KEY (or pass --openai-api-key)")

// validate is called before any client is created.
func (c ServeCommand) validate() error {
	if c.Provider == "openai" && c.OpenAIAPIKey == "" {
		return errMissingAPIKey
	}
	if c.UpstreamTimeout < 0 {
		return errors.New("upstream-timeout must be >= 0")
	}
	if (c.RqliteURL == "") != (c.APIKeysFile == "") {
		return errors.New("rqlite-url and api-keys-file must be set together")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return errors.New("tls-cert-file and tls-key-file must be set together")
	}
	return nil
}

func (c ServeCommand) loadPersona() (persona.Persona, error) {
	if c.PersonaFile == "" {
		return persona.Default(), nil
	}
	return persona.Load(c.PersonaFile)
}

// ProfileStore is implemented by *db.Queries.
type ProfileStore interface {
	profileget.ProfileGetter
	profileput.ProfilePutter
	profiledelete.ProfileDeleter
}

type routes struct {
	Gateway    chatpost.Responder
	Summarizer summarizer.Summarizer
	// Profiles and APIKeyToUserName are optional. Profile routes are only
	// registered when both are set.
	Profiles         ProfileStore
	APIKeyToUserName map[string]string
}

func newHandler(log *slog.Logger, r routes) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("POST /api/chat", chatpost.New(log, r.Gateway))
	mux.Handle("POST /api/generate-summary", summarypost.New(log, r.Summarizer))
	if r.Profiles != nil && r.APIKeyToUserName != nil {
		mux.Handle("GET /api/profile", auth.New(r.APIKeyToUserName, profileget.New(log, r.Profiles)))
		mux.Handle("PUT /api/profile", auth.New(r.APIKeyToUserName, profileput.New(log, r.Profiles)))
		mux.Handle("DELETE /api/profile", auth.New(r.APIKeyToUserName, profiledelete.New(log, r.Profiles)))
	}
	return cors.AllowAll().Handler(reqlog.New(log, mux))
}

func (c ServeCommand) Run(ctx context.Context) (err error) {
	if err = c.validate(); err != nil {
		return err
	}
	log := getLogger(c.LogLevel)

	p, err := c.loadPersona()
	if err != nil {
		return fmt.Errorf("failed to load persona: %w", err)
	}
	log.Info("loaded persona", slog.String("name", p.Name))

	log.Info("creating LLM clients", slog.String("provider", c.Provider), slog.String("model", c.ChatModel))
	httpClient := &http.Client{Timeout: c.UpstreamTimeout}
	var llm llms.Model
	var s summarizer.Summarizer
	switch c.Provider {
	case "openai":
		sdkOpts := []option.RequestOption{
			option.WithAPIKey(c.OpenAIAPIKey),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		}
		if c.OpenAIBaseURL != "" {
			sdkOpts = append(sdkOpts, option.WithBaseURL(c.OpenAIBaseURL))
		}
		sdk := openai.NewClient(sdkOpts...)
		llm = gateway.NewChatCompletions(&sdk, c.ChatModel)
		s = summarizer.NewOpenAI(&sdk, c.SummaryModel, p.SummaryPrompt)
	case "ollama":
		if llm, err = ollama.New(
			ollama.WithModel(c.ChatModel),
			ollama.WithHTTPClient(httpClient),
			ollama.WithServerURL(c.OllamaURL)); err != nil {
			return fmt.Errorf("failed to create LLM: %w", err)
		}
		s = summarizer.NewLLM(llm, c.SummaryModel, p.SummaryPrompt)
	}

	gw, err := gateway.New(log, llm, gateway.Config{
		PersonaPrompt: p.Prompt,
		Sampling:      gateway.DefaultSampling(c.ChatModel),
		Timeout:       c.UpstreamTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}
	r := routes{
		Gateway:    gw,
		Summarizer: s,
	}

	if c.RqliteURL != "" {
		profiles, err := db.Open(log, c.RqliteURL)
		if err != nil {
			return fmt.Errorf("failed to open profile store: %w", err)
		}
		defer profiles.Close()
		r.Profiles = profiles

		if r.APIKeyToUserName, err = auth.LoadFromFile(c.APIKeysFile); err != nil {
			return fmt.Errorf("failed to load API keys: %w", err)
		}
	} else {
		log.Info("profile storage disabled")
	}

	srv := &http.Server{
		Addr:              c.ListenAddr,
		Handler:           newHandler(log, r),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if c.TLSCertFile != "" {
		log.Info("Enabling TLS mode")
		var cert tls.Certificate
		cert, err = tls.LoadX509KeyPair(c.TLSCertFile, c.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load cert: %w", err)
		}
		srv.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
	}
	return listenAndServe(ctx, log, srv)
}

// listenAndServe shuts the server down gracefully when ctx is done.
func listenAndServe(ctx context.Context, log *slog.Logger, s *http.Server) error {
	errs := make(chan error, 1)
	go func() {
		log.Info("Listening", slog.String("addr", s.Addr))
		if s.TLSConfig != nil {
			errs <- s.ListenAndServeTLS("", "")
			return
		}
		errs <- s.ListenAndServe()
	}()
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
