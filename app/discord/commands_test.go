package discord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		content string
		prefix  string
		want    Command
		wantOK  bool
	}{
		{content: "!ping", prefix: "!", want: Command{Name: "ping"}, wantOK: true},
		{content: "!track Faker", prefix: "!", want: Command{Name: "track", Args: "Faker"}, wantOK: true},
		{content: "!track Hide on bush", prefix: "!", want: Command{Name: "track", Args: "Hide on bush"}, wantOK: true},
		{content: "  !track   spaced out  ", prefix: "!", want: Command{Name: "track", Args: "spaced out"}, wantOK: true},
		{content: "!track\tFaker", prefix: "!", want: Command{Name: "track", Args: "Faker"}, wantOK: true},
		{content: "!track\nHide on bush", prefix: "!", want: Command{Name: "track", Args: "Hide on bush"}, wantOK: true},
		{content: "!track\u00a0Faker", prefix: "!", want: Command{Name: "track", Args: "Faker"}, wantOK: true},
		{content: "!ping\t", prefix: "!", want: Command{Name: "ping"}, wantOK: true},
		{content: "!track", prefix: "!", want: Command{Name: "track"}, wantOK: true},
		{content: "!untrack", prefix: "!", want: Command{Name: "untrack"}, wantOK: true},
		{content: "!untrack please", prefix: "!", want: Command{Name: "untrack", Args: "please"}, wantOK: true},
		{content: "?track Faker", prefix: "?", want: Command{Name: "track", Args: "Faker"}, wantOK: true},
		{content: "!TRACK Faker", prefix: "!"},
		{content: "!tracking Faker", prefix: "!"},
		{content: "track Faker", prefix: "!"},
		{content: "hello !ping", prefix: "!"},
		{content: "", prefix: "!"},
		{content: "!ping", prefix: ""},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			got, ok := ParseCommand(tt.content, tt.prefix)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
