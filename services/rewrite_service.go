package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"support-backend-go/config"
)

// Error categories for a failed rewrite. Each failure class is distinct
// so the caller can report it separately; none of them carries partial
// output.
var (
	ErrRequestFailed       = errors.New("request to completion endpoint failed")
	ErrBadStatus           = errors.New("completion endpoint returned an error status")
	ErrBadResponse         = errors.New("completion endpoint returned a malformed response")
	ErrEmptyResponse       = errors.New("completion endpoint returned no choices")
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// systemPrompts holds the fixed instruction block per language. The
// selected prompt is the only part of the upstream request that changes
// with the language; the user text is sent as-is.
var systemPrompts = map[string]string{
	"EN": `You are a professional support assistant. Your job is to enhance and rewrite any given message so it sounds clear, helpful, empathetic, and professional—without changing the core meaning. Always keep the tone customer-friendly, respectful, and supportive. Use correct grammar, structure, and polite language. Keep responses concise unless more detail is needed to clarify an issue. Do not add unrelated information or assumptions.

When enhancing the message:

Fix grammar and spelling

Use polite and empathetic phrasing

Maintain a calm, professional tone

Clarify technical terms if necessary (briefly)

Ensure the message is easy to understand

Output only the enhanced message without any explanation or preamble.`,
	"FR": `
Vous êtes un(e) assistant(e) professionnel(le). Votre tâche consiste à améliorer et à réécrire un message donné pour qu'il soit clair, utile, empathique et professionnel, sans en modifier le sens principal. Le ton doit toujours être convivial, respectueux et encourageant. Utilisez une grammaire et une structure correctes, ainsi qu'un langage poli. Les réponses doivent être concises, sauf si des détails supplémentaires sont nécessaires pour clarifier une question. N'ajoutez pas d'informations ou de suppositions sans rapport avec le sujet.

Lorsque vous améliorez le message :

Corrigez la grammaire et l'orthographe

Utilisez des formules de politesse et d'empathie.

Maintenir un ton calme et professionnel

Clarifier les termes techniques si nécessaire (brièvement)

Veiller à ce que le message soit facile à comprendre

Ne diffusez que le message amélioré, sans explication ni préambule.`,
}

// SupportedLanguage reports whether a language code has a prompt variant.
func SupportedLanguage(language string) bool {
	_, ok := systemPrompts[language]
	return ok
}

// ==== Completion endpoint wire format ====

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// RewriteService talks to an OpenRouter-style chat-completions endpoint.
type RewriteService struct {
	client  *http.Client
	apiURL  string
	apiKey  string
	model   string
	referer string
	title   string
}

// NewRewriteService builds a service from the loaded configuration.
// The client timeout bounds the single synchronous upstream call.
func NewRewriteService() *RewriteService {
	return &RewriteService{
		client:  &http.Client{Timeout: 30 * time.Second},
		apiURL:  config.OpenRouterURL,
		apiKey:  config.OpenRouterKey,
		model:   config.OpenRouterModel,
		referer: config.AppReferer,
		title:   config.AppTitle,
	}
}

// Rewrite sends the user text to the completion endpoint with the fixed
// system prompt for the language and returns the first choice's content.
// One request, no retry, no streaming; every failure maps to exactly one
// of the exported error categories.
func (s *RewriteService) Rewrite(ctx context.Context, text, language string) (string, error) {
	prompt, ok := systemPrompts[language]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}

	payload := completionRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: text},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("HTTP-Referer", s.referer)
	req.Header.Set("X-Title", s.title)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	var completion completionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return completion.Choices[0].Message.Content, nil
}
