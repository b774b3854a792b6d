package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/gremlin/internal/spec"
)

func ptr(f float64) *float64 { return &f }

func TestFor_Priority(t *testing.T) {
	tests := []struct {
		name string
		el   spec.ElementRef
		want Locator
	}{
		{
			name: "test id beats everything",
			el:   spec.ElementRef{TestID: "buy", AccessibilityLabel: "Buy now", Text: "Buy", Type: "button", Selector: "#buy"},
			want: Locator{Strategy: ByTestID, Value: "buy"},
		},
		{
			name: "label beats text",
			el:   spec.ElementRef{AccessibilityLabel: "Close dialog", Text: "X", Type: "button"},
			want: Locator{Strategy: ByLabel, Value: "Close dialog"},
		},
		{
			name: "button text becomes a role query",
			el:   spec.ElementRef{Text: "Checkout", Type: "button"},
			want: Locator{Strategy: ByRole, Value: "Checkout", Role: "button"},
		},
		{
			name: "link text becomes a role query",
			el:   spec.ElementRef{Text: "Sign in", Type: "link"},
			want: Locator{Strategy: ByRole, Value: "Sign in", Role: "link"},
		},
		{
			name: "plain text",
			el:   spec.ElementRef{Text: "Welcome back", Type: "text"},
			want: Locator{Strategy: ByText, Value: "Welcome back"},
		},
		{
			name: "selector",
			el:   spec.ElementRef{Selector: "form#payment", X: ptr(1), Y: ptr(2)},
			want: Locator{Strategy: BySelector, Value: "form#payment"},
		},
		{
			name: "coordinates",
			el:   spec.ElementRef{Type: "view", X: ptr(120), Y: ptr(48.5)},
			want: Locator{Strategy: ByCoordinates, X: 120, Y: 48.5},
		},
		{
			name: "half a coordinate is nothing",
			el:   spec.ElementRef{X: ptr(120)},
			want: Locator{Strategy: None},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, For(tt.el))
		})
	}
}

func TestFragile(t *testing.T) {
	assert.False(t, Locator{Strategy: ByTestID}.Fragile())
	assert.False(t, Locator{Strategy: BySelector}.Fragile())
	assert.True(t, Locator{Strategy: ByCoordinates}.Fragile())
	assert.True(t, Locator{Strategy: None}.Fragile())
}
