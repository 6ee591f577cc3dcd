package transport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecipient_Matches(t *testing.T) {
	tests := []struct {
		name      string
		recipient Recipient
		token     Token
		want      bool
	}{
		{"all matches any", ToAll(), 5, true},
		{"single matches own", ToSingle(3), 3, true},
		{"single rejects other", ToSingle(3), 4, false},
		{"all-except rejects excluded", ToAllExcept(2), 2, false},
		{"all-except matches other", ToAllExcept(2), 7, true},
		{"only matches listed", ToOnly(1, 4, 9), 4, true},
		{"only rejects unlisted", ToOnly(1, 4, 9), 5, false},
		{"except-many rejects listed", ToAllExceptMany(1, 2), 2, false},
		{"except-many matches unlisted", ToAllExceptMany(1, 2), 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.recipient.matches(tt.token))
		})
	}
}
