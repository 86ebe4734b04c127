package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotPayload struct {
	Date string `binding:"required,dateonly"`
	Time string `binding:"required,hhmm"`
}

func TestCustomValidations(t *testing.T) {
	require.NoError(t, RegisterCustomValidations())

	tests := []struct {
		name    string
		payload slotPayload
		wantErr bool
	}{
		{"valid", slotPayload{Date: "2026-09-07", Time: "09:00"}, false},
		{"bad time", slotPayload{Date: "2026-09-07", Time: "9am"}, true},
		{"out of range time", slotPayload{Date: "2026-09-07", Time: "25:00"}, true},
		{"bad date", slotPayload{Date: "07-09-2026", Time: "09:00"}, true},
		{"missing", slotPayload{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
