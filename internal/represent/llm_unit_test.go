// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package represent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLLMClient_InterpretParsesReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("server: decoding request: %v", err)
		}
		if req.MaxTokens != maxReplyTokens {
			t.Errorf("MaxTokens = %d, want %d", req.MaxTokens, maxReplyTokens)
		}
		if req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("Messages = %+v, want system then user", req.Messages)
		}
		resp := chatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message chatMessage `json:"message"`
		}{Message: chatMessage{Role: "assistant", Content: "looks nominal"}})
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := &LLMClient{APIKey: "test-key", Model: defaultModel, Endpoint: srv.URL, HTTPClient: srv.Client()}

	got, err := client.Interpret(context.Background(), "sys", "usr")
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if got != "looks nominal" {
		t.Errorf("Interpret() = %q, want %q", got, "looks nominal")
	}
}

func TestLLMClient_InterpretErrorsOnNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := &LLMClient{APIKey: "test-key", Model: defaultModel, Endpoint: srv.URL, HTTPClient: srv.Client()}
	if _, err := client.Interpret(context.Background(), "sys", "usr"); err == nil {
		t.Fatalf("Interpret with a 429 response: got nil error, want non-nil")
	}
}

func TestLLMClient_InterpretErrorsOnEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer srv.Close()

	client := &LLMClient{APIKey: "test-key", Model: defaultModel, Endpoint: srv.URL, HTTPClient: srv.Client()}
	if _, err := client.Interpret(context.Background(), "sys", "usr"); err == nil {
		t.Fatalf("Interpret with zero choices: got nil error, want non-nil")
	}
}

func TestNewLLMClientFromEnv_NilWithoutAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if c := NewLLMClientFromEnv("gpt-4o-mini"); c != nil {
		t.Errorf("NewLLMClientFromEnv() with no API key = %v, want nil", c)
	}
}

func TestNewLLMClientFromEnv_PresentWithAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	c := NewLLMClientFromEnv("gpt-4o-mini")
	if c == nil {
		t.Fatalf("NewLLMClientFromEnv() with an API key set = nil, want non-nil")
	}
	if c.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want %q", c.APIKey, "sk-test")
	}
}

func TestNewLLMClientFromEnv_UsesConfiguredModel(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	c := NewLLMClientFromEnv("gpt-4o")
	if c == nil {
		t.Fatalf("NewLLMClientFromEnv() with an API key set = nil, want non-nil")
	}
	if c.Model != "gpt-4o" {
		t.Errorf("Model = %q, want %q", c.Model, "gpt-4o")
	}
}

func TestNewLLMClientFromEnv_EmptyModelFallsBackToDefault(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	c := NewLLMClientFromEnv("")
	if c == nil {
		t.Fatalf("NewLLMClientFromEnv() with an API key set = nil, want non-nil")
	}
	if c.Model != defaultModel {
		t.Errorf("Model = %q, want default %q", c.Model, defaultModel)
	}
}
