package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"crosswarped.com/checkerboard"
	"crosswarped.com/checkerboard/internal/dictionary"
)

type SolveCheckerboardRequest struct {
	Ciphertext      string  `json:"ciphertext"`
	Crib            string  `json:"crib"`
	CribPosition    *int    `json:"cribPosition"`
	PolybiusKeyword *string `json:"polybiusKeyword"`
	KeywordLength   *int    `json:"keywordLength"`

	Plaintext   string `json:"plaintext"`
	RowKeyword  string `json:"rowKeyword"`
	ColKeyword  string `json:"colKeyword"`
	Walkthrough bool   `json:"walkthrough"`

	WordScope      string   `json:"wordScope"`
	IncludeObscure bool     `json:"includeObscure"`
	PreferredWords []string `json:"preferredWords"`
	ObscureWords   []string `json:"obscureWords"`
	ExcludedWords  []string `json:"excludedWords"`
}

type SolveCheckerboardResponse struct {
	Success         bool     `json:"success"`
	State           string   `json:"state,omitempty"`
	Plaintext       string   `json:"plaintext,omitempty"`
	Tables          []string `json:"tables,omitempty"`
	RowKeywords     []string `json:"rowKeywords,omitempty"`
	ColKeywords     []string `json:"colKeywords,omitempty"`
	Explanation     []string `json:"explanation,omitempty"`
	Difficulty      float64  `json:"difficulty"`
	AutoSolverScore float64  `json:"autoSolverScore"`
	ReadilySolvable bool     `json:"readilySolvable"`
	Warnings        []string `json:"warnings,omitempty"`
	Error           string   `json:"error,omitempty"`
}

var logger = newLogger()

func newLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// getWords is replaced in tests.
var getWords = getBigQueryWords

func getBigQueryWords(ctx context.Context, scope string, includeObscure bool) ([]string, []string, error) {
	client, err := bigquery.NewClient(ctx, "xword-x")
	if err != nil {
		return nil, nil, fmt.Errorf("bigquery.NewClient: %w", err)
	}
	defer client.Close()

	q := client.Query("SELECT word_key, obscure FROM `xword-x.FirestoreQuery.all_words` WHERE scope = @scope AND (obscure = FALSE OR @includeObscure) ORDER BY frequency DESC")
	q.Location = "US"
	q.Parameters = []bigquery.QueryParameter{
		{Name: "scope", Value: scope},
		{Name: "includeObscure", Value: includeObscure},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("q.Run: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("job.Wait: %w", err)
	}
	if err := status.Err(); err != nil {
		return nil, nil, fmt.Errorf("status.Err: %w", err)
	}
	it, err := job.Read(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("job.Read: %w", err)
	}

	var regularWords, obscureWords []string
	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("it.Next: %w", err)
		}

		word, ok := row[0].(string)
		if !ok {
			return nil, nil, fmt.Errorf("row[0] is not a string: %v", row[0])
		}
		isObscure, ok := row[1].(bool)
		if !ok {
			return nil, nil, fmt.Errorf("row[1] is not a bool: %v", row[1])
		}
		if isObscure {
			obscureWords = append(obscureWords, word)
		} else {
			regularWords = append(regularWords, word)
		}
	}
	return regularWords, obscureWords, nil
}

func loadDictionary(ctx context.Context, req SolveCheckerboardRequest) (*dictionary.Index, error) {
	preferred := req.PreferredWords
	obscure := req.ObscureWords
	if req.WordScope != "" {
		regularWords, obscureWords, err := getWords(ctx, req.WordScope, req.IncludeObscure)
		if err != nil {
			return nil, fmt.Errorf("getWords: %w", err)
		}
		logger.Info("loaded words", zap.String("scope", req.WordScope), zap.Int("regular", len(regularWords)), zap.Int("obscure", len(obscureWords)))
		preferred = append(preferred, regularWords...)
		obscure = append(obscure, obscureWords...)
	}

	if len(preferred) > 0 {
		return dictionary.New(dictionary.Params{
			PreferredWords: preferred,
			ObscureWords:   obscure,
			ExcludedWords:  req.ExcludedWords,
		})
	}
	if len(obscure) == 0 && len(req.ExcludedWords) == 0 {
		return dictionary.Default()
	}
	// Extra lists on top of the built-in words.
	return dictionary.FromFiles(ctx, "", "", "", dictionary.Params{
		ObscureWords:  obscure,
		ExcludedWords: req.ExcludedWords,
	})
}

func execute(ctx context.Context, req SolveCheckerboardRequest) (*SolveCheckerboardResponse, error) {
	if strings.TrimSpace(req.Ciphertext) == "" {
		return nil, fmt.Errorf("ciphertext must not be empty")
	}

	dict, err := loadDictionary(ctx, req)
	if err != nil {
		return nil, err
	}

	puzzle := checkerboard.Puzzle{
		Ciphertext:      req.Ciphertext,
		PolybiusKeyword: req.PolybiusKeyword,
		KeywordLength:   req.KeywordLength,
		Plaintext:       req.Plaintext,
		RowKeyword:      req.RowKeyword,
		ColKeyword:      req.ColKeyword,
	}
	if req.Crib != "" {
		pos := -1
		if req.CribPosition != nil {
			pos = *req.CribPosition
		}
		puzzle.Crib = &checkerboard.Crib{Text: req.Crib, Position: pos}
	}
	if req.Walkthrough {
		puzzle.Mode = checkerboard.ModeWalkthrough
	}

	deadline, ok := ctx.Deadline()
	timeout := 1 * time.Minute
	if ok {
		timeout = time.Until(deadline) - 5*time.Second
		logger.Debug("setting timeout", zap.Duration("timeout", timeout))
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	solver := checkerboard.NewSolver(dict, checkerboard.SolverParams{Logger: logger})
	var transcript checkerboard.Transcript
	res, err := solver.Solve(ctx, puzzle, &transcript)
	if err != nil {
		return nil, err
	}

	response := &SolveCheckerboardResponse{
		Success:         true,
		State:           res.State.String(),
		Plaintext:       res.Plaintext,
		RowKeywords:     res.RowKeywords,
		ColKeywords:     res.ColKeywords,
		Difficulty:      res.Difficulty,
		AutoSolverScore: res.AutoSolverScore,
		ReadilySolvable: res.ReadilySolvable,
		Warnings:        res.Warnings,
	}
	for _, t := range res.Tables {
		response.Tables = append(response.Tables, t.Repr)
	}
	for _, e := range transcript.Entries {
		if e.Title != "" {
			response.Explanation = append(response.Explanation, "## "+e.Title)
			continue
		}
		response.Explanation = append(response.Explanation, e.Text)
	}
	return response, nil
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Content-Type", "application/json")
}

func solveCheckerboard(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		fmt.Fprintf(w, `{"success": false, "error": "Method %s not allowed"}`, r.Method)
		return
	}

	var req SolveCheckerboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid request body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(SolveCheckerboardResponse{
			Success: false,
			Error:   fmt.Sprintf("Invalid JSON: %v", err),
		})
		return
	}

	response, err := execute(r.Context(), req)
	if err != nil {
		logger.Info("solve failed", zap.Error(err))
		response = &SolveCheckerboardResponse{Success: false, Error: err.Error()}
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("marshaling response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"success": false, "error": "Internal server error"}`)
		return
	}
}

func main() {
	defer logger.Sync()
	funcframework.RegisterHTTPFunction("/solve-checkerboard", solveCheckerboard)

	port := "8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}
	hostname := ""
	if localOnly := os.Getenv("LOCAL_ONLY"); localOnly == "true" {
		hostname = "127.0.0.1"
	}
	if err := funcframework.StartHostPort(hostname, port); err != nil {
		logger.Fatal("funcframework.StartHostPort", zap.Error(err))
	}
}
