package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/signtype/signtype/internal/logger"
	"github.com/signtype/signtype/internal/utils"
	"github.com/signtype/signtype/pkg/config"
	"github.com/signtype/signtype/pkg/recognize"
	"github.com/signtype/signtype/pkg/speech"
	"github.com/signtype/signtype/pkg/suggest"
	"github.com/vmihailenco/msgpack/v5"
)

// configCheckInterval is how many requests pass between config file checks.
const configCheckInterval = 50

// Sayer queues text to be spoken.
type Sayer interface {
	Say(text string) error
}

// Server handles msgpack IPC for one client.
type Server struct {
	holder     *suggest.Holder
	recognizer recognize.Recognizer
	sayer      Sayer

	config        *config.Config
	configPath    string
	configModTime int64
	corpusPath    string

	reader io.Reader
	writer *bufio.Writer
	log    *log.Logger

	requestCount int
}

// Option customizes a Server.
type Option func(*Server)

// WithRecognizer sets the frame classifier used by predict.
func WithRecognizer(r recognize.Recognizer) Option {
	return func(s *Server) { s.recognizer = r }
}

// WithSayer sets where speak requests go. Without one, speak requests fail.
func WithSayer(sayer Sayer) Option {
	return func(s *Server) { s.sayer = sayer }
}

// WithIO replaces stdin/stdout.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(s *Server) {
		s.reader = r
		s.writer = bufio.NewWriter(w)
	}
}

// WithConfigPath enables periodic config reloading from path.
func WithConfigPath(path string) Option {
	return func(s *Server) {
		s.configPath = path
		s.configModTime = utils.ModTime(path)
	}
}

// NewServer creates a server answering from holder; corpusPath is what reload retrains from.
func NewServer(holder *suggest.Holder, cfg *config.Config, corpusPath string, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		holder:     holder,
		recognizer: recognize.Nop{},
		config:     cfg,
		corpusPath: corpusPath,
		reader:     os.Stdin,
		writer:     bufio.NewWriter(os.Stdout),
		log:        logger.New("ipc"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start reads requests until EOF or ctx is done.
// A stream that is no longer valid msgpack ends the session with an error.
func (s *Server) Start(ctx context.Context) error {
	s.log.Debugf("Starting server, recognizer=%s", s.recognizer.Name())
	dec := msgpack.NewDecoder(bufio.NewReader(s.reader))

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		var raw msgpack.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debug("Client closed the stream")
				return nil
			}
			s.sendError("", "Invalid msgpack stream", 400)
			return fmt.Errorf("decoding request: %w", err)
		}

		s.requestCount++
		if s.requestCount%configCheckInterval == 0 {
			s.reloadConfigIfChanged()
		}

		s.handleRequest(ctx, raw)
	}
}

func (s *Server) handleRequest(ctx context.Context, raw msgpack.RawMessage) {
	var req Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		s.log.Errorf("Unmarshaling request: %v", err)
		s.sendError("", "Invalid request", 400)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Action == "" {
		req.Action = inferAction(req)
	}

	switch req.Action {
	case ActionPredict:
		s.handlePredict(ctx, req)
	case ActionSuggest:
		s.handleSuggest(req)
	case ActionComplete:
		s.handleComplete(req)
	case ActionSpeak:
		s.handleSpeak(req)
	case ActionReload:
		s.handleReload(req)
	case ActionStats:
		s.handleStats(req)
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown action: %s", req.Action), 400)
	}
}

// inferAction supports clients that send only the payload fields.
func inferAction(req Request) string {
	switch {
	case req.Image != "":
		return ActionPredict
	case req.Prefix != "":
		return ActionComplete
	case req.Text != "":
		return ActionSpeak
	case req.Sentence != "":
		return ActionSuggest
	}
	return ""
}

// handlePredict recognizes the frame and suggests from the sentence as sent.
// A frame that cannot be decoded or recognized only empties the label.
func (s *Server) handlePredict(ctx context.Context, req Request) {
	start := time.Now()

	label := ""
	frame, err := recognize.DecodeImagePayload(req.Image)
	if err != nil {
		s.log.Errorf("Error processing image data: %v", err)
	} else if label, err = s.recognizer.Recognize(ctx, frame); err != nil {
		s.log.Errorf("Recognizer %s: %v", s.recognizer.Name(), err)
		label = ""
	}

	suggestions := s.suggestions(req.Sentence, req.Limit)
	s.sendResponse(PredictResponse{
		ID:          req.ID,
		Label:       label,
		Sentence:    recognize.Apply(req.Sentence, label),
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   time.Since(start).Microseconds(),
	})
}

func (s *Server) handleSuggest(req Request) {
	start := time.Now()
	suggestions := s.suggestions(req.Sentence, req.Limit)
	s.sendResponse(SuggestResponse{
		ID:          req.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   time.Since(start).Microseconds(),
	})
}

func (s *Server) suggestions(sentence string, limit int) []Suggestion {
	found := s.holder.Load().Suggest(suggest.ContextFromSentence(sentence))
	if s.config.Server.FilterEnd {
		found = suggest.WithoutEnd(found)
	}
	found = suggest.Limit(found, s.config.ClampLimit(limit))

	ranks := utils.CreateRankList(len(found))
	result := make([]Suggestion, len(found))
	for i, f := range found {
		result[i] = Suggestion{Word: f.Word, Probability: f.Probability, Rank: ranks[i]}
	}
	return result
}

func (s *Server) handleComplete(req Request) {
	if req.Prefix == "" {
		s.sendError(req.ID, "Missing 'p' parameter", 400)
		return
	}

	start := time.Now()
	found := s.holder.Load().CompleteInContext(req.Prefix, s.config.ClampLimit(req.Limit))

	ranks := utils.CreateRankList(len(found))
	completions := make([]Completion, len(found))
	for i, f := range found {
		completions[i] = Completion{Word: f.Word, Frequency: f.Frequency, Rank: ranks[i]}
	}
	s.sendResponse(CompleteResponse{
		ID:          req.ID,
		Completions: completions,
		Count:       len(completions),
		TimeTaken:   time.Since(start).Microseconds(),
	})
}

func (s *Server) handleSpeak(req Request) {
	if strings.TrimSpace(req.Text) == "" {
		s.sendResponse(StatusResponse{ID: req.ID, Status: "error", Message: speech.ErrNoText.Error()})
		return
	}
	if s.sayer == nil {
		s.sendResponse(StatusResponse{ID: req.ID, Status: "error", Message: "Speech is disabled"})
		return
	}
	if err := s.sayer.Say(req.Text); err != nil {
		s.log.Warnf("Speak %s: %v", req.ID, err)
		s.sendResponse(StatusResponse{ID: req.ID, Status: "error", Message: err.Error()})
		return
	}
	s.sendResponse(StatusResponse{ID: req.ID, Status: "success"})
}

func (s *Server) handleReload(req Request) {
	if err := s.holder.Reload(s.corpusPath); err != nil {
		s.log.Errorf("Reload failed: %v", err)
		s.sendError(req.ID, err.Error(), 500)
		return
	}
	s.sendResponse(StatusResponse{ID: req.ID, Status: "success"})
}

func (s *Server) handleStats(req Request) {
	s.sendResponse(StatsResponse{
		ID:      req.ID,
		Status:  "success",
		Stats:   s.holder.Load().Stats(),
		Reloads: s.holder.Reloads(),
		Corpus:  s.corpusPath,
	})
}

// reloadConfigIfChanged swaps in the config file when its mtime moved.
func (s *Server) reloadConfigIfChanged() {
	if s.configPath == "" {
		return
	}
	modTime := utils.ModTime(s.configPath)
	if modTime == 0 || modTime == s.configModTime {
		return
	}
	cfg, err := config.LoadConfig(s.configPath)
	if err != nil {
		s.log.Warnf("Config reload failed: %v", err)
		return
	}
	config.ApplyEnv(cfg)
	if cfg.Corpus.Path != s.config.Corpus.Path {
		s.resolveCorpus(cfg.Corpus.Path)
	}
	s.config = cfg
	s.configModTime = modTime
	s.log.Debugf("Config reloaded from %s after %d requests", s.configPath, s.requestCount)
}

// resolveCorpus points later reloads at path. An unusable path keeps the current corpus.
func (s *Server) resolveCorpus(path string) {
	resolver, err := utils.NewPathResolver()
	if err != nil {
		s.log.Warnf("Corpus path not changed: %v", err)
		return
	}
	resolved, err := resolver.GetCorpusPath(path)
	if err != nil {
		s.log.Warnf("Corpus path not changed, keeping %s: %v", s.corpusPath, err)
		return
	}
	s.log.Debugf("Corpus path changed to %s", resolved)
	s.corpusPath = resolved
}

func (s *Server) sendResponse(response any) {
	data, err := msgpack.Marshal(response)
	if err != nil {
		s.log.Errorf("Marshaling response: %v", err)
		data, _ = msgpack.Marshal(ErrorResponse{Error: "Internal server error", Code: 500})
	}
	if _, err := s.writer.Write(data); err != nil {
		s.log.Errorf("Writing response: %v", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		s.log.Errorf("Flushing response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{ID: id, Error: message, Code: code})
}
