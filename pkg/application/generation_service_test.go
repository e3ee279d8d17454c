package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/featurecraft/pkg/application"
)

const loginReply = `[{"title":"Add login form","description":"...","effort":3,"priority":2}]`

func TestGenerationService_BuildsMessages(t *testing.T) {
	provider := &stubProvider{reply: loginReply}
	svc := application.NewGenerationService(provider, application.StaticPrompt("Split the feature.\n"), application.GenerationSettings{Temperature: 0.7}, nil)

	proposals, err := svc.GenerateProposals(context.Background(), "<p>Allow users to log in</p>", application.LanguageEnglish)
	if err != nil {
		t.Fatalf("GenerateProposals failed: %v", err)
	}
	if len(proposals) != 1 || proposals[0].Title != "Add login form" || proposals[0].Effort != 3 || proposals[0].Priority != 2 {
		t.Errorf("unexpected proposals: %+v", proposals)
	}

	if provider.last.System != "Split the feature.\nYou must respond **only in English**." {
		t.Errorf("unexpected system message: %q", provider.last.System)
	}
	if provider.last.Prompt != "<p>Allow users to log in</p>" {
		t.Errorf("unexpected user message: %q", provider.last.Prompt)
	}
	if provider.last.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", provider.last.Temperature)
	}
}

func TestGenerationService_HebrewDirective(t *testing.T) {
	svc := application.NewGenerationService(&stubProvider{}, application.StaticPrompt("P "), application.GenerationSettings{}, nil)
	if got := svc.SystemPrompt(application.LanguageHebrew); got != "P You must respond **only in Hebrew**." {
		t.Errorf("unexpected prompt %q", got)
	}
}

func TestGenerationService_ProviderError(t *testing.T) {
	boom := errors.New("connection reset")
	svc := application.NewGenerationService(&stubProvider{err: boom}, application.StaticPrompt(""), application.GenerationSettings{}, nil)

	_, err := svc.GenerateProposals(context.Background(), "x", application.LanguageEnglish)
	if !errors.Is(err, boom) {
		t.Errorf("expected provider error to be wrapped, got %v", err)
	}
}

func TestParseProposals(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    int
		wantErr bool
	}{
		{"valid", loginReply, 1, false},
		{"fenced", "```json\n" + loginReply + "\n```", 1, false},
		{"two items", `[{"title":"a","description":"","effort":1,"priority":1},{"title":"b","description":"d","effort":99,"priority":4}]`, 2, false},
		{"not json", "Sure! Here are your tasks: 1. login", 0, true},
		{"empty", "", 0, true},
		{"empty array", "[]", 0, true},
		{"object not array", `{"title":"a","description":"","effort":1,"priority":1}`, 0, true},
		{"missing priority", `[{"title":"a","description":"","effort":1}]`, 0, true},
		{"effort out of range", `[{"title":"a","description":"","effort":120,"priority":1}]`, 0, true},
		{"priority out of range", `[{"title":"a","description":"","effort":1,"priority":0}]`, 0, true},
		{"effort as string", `[{"title":"a","description":"","effort":"3","priority":1}]`, 0, true},
		{"empty title", `[{"title":"","description":"","effort":1,"priority":1}]`, 0, true},
		{"truncated", `[{"title":"a","description":"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := application.ParseProposals(tt.reply)
			if tt.wantErr {
				var malformed *application.MalformedResponseError
				if !errors.As(err, &malformed) {
					t.Fatalf("expected *MalformedResponseError, got %T: %v", err, err)
				}
				if len(malformed.Reasons) == 0 {
					t.Error("expected at least one reason")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d proposals, got %d", tt.want, len(got))
			}
		})
	}
}

func TestParseLanguage(t *testing.T) {
	for in, want := range map[string]application.Language{"he": "he", "IL": "he", "EN": "en", " en ": "en"} {
		got, ok := application.ParseLanguage(in)
		if !ok || got != want {
			t.Errorf("ParseLanguage(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := application.ParseLanguage("fr"); ok {
		t.Error("expected fr to be rejected")
	}
	if !strings.Contains(application.LanguageEnglish.Directive(), "English") {
		t.Error("english directive should mention English")
	}
}
