package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensebot/internal/common"
)

func TestNewOpenAIClient(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				APIKey: "test-key",
			},
			wantErr: false,
		},
		{
			name: "missing API key",
			config: Config{
				APIKey: "",
			},
			wantErr: true,
		},
		{
			name: "custom model and settings",
			config: Config{
				APIKey:      "test-key",
				BaseURL:     "https://openrouter.ai/api/v1/",
				Model:       "openai/gpt-4o-mini",
				Temperature: 0.5,
				MaxTokens:   200,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := newOpenAIClient(tt.config)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

func TestOpenAIClientClassify(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		want       ExtractionResponse
		statusCode int
		noChoices  bool
		wantErr    bool
	}{
		{
			name:       "extracts all fields",
			content:    `{"intent":"log_expense","amount":"2k","item":"hat","category":"clothing"}`,
			statusCode: http.StatusOK,
			want: ExtractionResponse{
				Intent:   "log_expense",
				Amount:   strPtr("2k"),
				Item:     strPtr("hat"),
				Category: strPtr("clothing"),
			},
		},
		{
			name:       "numeric amount and null fields",
			content:    `{"intent":"log_expense","amount":500,"item":null,"category":null}`,
			statusCode: http.StatusOK,
			want: ExtractionResponse{
				Intent: "log_expense",
				Amount: strPtr("500"),
			},
		},
		{
			name:       "markdown fenced reply",
			content:    "```json\n{\"intent\":\"query\",\"amount\":null,\"item\":null,\"category\":null}\n```",
			statusCode: http.StatusOK,
			want: ExtractionResponse{
				Intent: "query",
			},
		},
		{
			name:       "API error",
			statusCode: http.StatusInternalServerError,
			wantErr:    true,
		},
		{
			name:       "no choices in response",
			statusCode: http.StatusOK,
			noChoices:  true,
			wantErr:    true,
		},
		{
			name:       "non-JSON reply",
			content:    "I logged that for you!",
			statusCode: http.StatusOK,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

				var reqBody map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				messages, ok := reqBody["messages"].([]any)
				require.True(t, ok)
				require.Len(t, messages, 2)
				first, ok := messages[0].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "system", first["role"])

				if tt.statusCode != http.StatusOK {
					w.WriteHeader(tt.statusCode)
					return
				}

				body := map[string]any{"choices": []any{}}
				if !tt.noChoices {
					body["choices"] = []any{
						map[string]any{
							"message": map[string]any{
								"role":    "assistant",
								"content": tt.content,
							},
						},
					}
				}
				w.Header().Set("Content-Type", "application/json")
				require.NoError(t, json.NewEncoder(w).Encode(body))
			}))
			defer server.Close()

			client, err := newOpenAIClient(Config{
				APIKey:  "test-key",
				BaseURL: server.URL,
			})
			require.NoError(t, err)

			got, err := client.Classify(context.Background(), "classify this")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func strPtr(s string) *string {
	return &s
}

func TestOpenAIClientRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Classify(context.Background(), "classify this")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRateLimit)
}
