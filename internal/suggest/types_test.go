package suggest

import (
	"encoding/json"
	"testing"
)

func TestSuggestion_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Suggestion
	}{
		{
			name: "canonical",
			data: `{"label":"Samsung A14","productId":"p1","modelId":"a14","matchType":"brand"}`,
			want: Suggestion{Label: "Samsung A14", ProductID: "p1", ModelID: "a14", MatchType: MatchBrand},
		},
		{
			name: "flat item",
			data: `{"id":"p9","name":"Tempered Glass"}`,
			want: Suggestion{Label: "Tempered Glass", ProductID: "p9", MatchType: MatchPartial},
		},
		{
			name: "numeric ids",
			data: `{"title":"Vivo V21 Battery","id":42,"modelId":7,"matchType":"MODEL"}`,
			want: Suggestion{Label: "Vivo V21 Battery", ProductID: "42", ModelID: "7", MatchType: MatchModel},
		},
		{
			name: "unknown match type",
			data: `{"label":"x","productId":"p","matchType":"fuzzy"}`,
			want: Suggestion{Label: "x", ProductID: "p", MatchType: MatchPartial},
		},
		{
			name: "null model",
			data: `{"label":"x","productId":"p","modelId":null,"matchType":"exact"}`,
			want: Suggestion{Label: "x", ProductID: "p", MatchType: MatchExact},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Suggestion
			if err := json.Unmarshal([]byte(tt.data), &got); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSuggestion_Route(t *testing.T) {
	tests := []struct {
		productID string
		modelID   string
		want      string
	}{
		{"p1", "a14", "/product/p1?model=a14"},
		{"p1", "", "/product/p1"},
		{"p/1 x", "", "/product/p%2F1%20x"},
		{"p1", "a&b=c d", "/product/p1?model=a%26b%3Dc+d"},
		{"p?1", "#a", "/product/p%3F1?model=%23a"},
	}

	for _, tt := range tests {
		s := Suggestion{ProductID: tt.productID, ModelID: tt.modelID}
		if got := s.Route(); got != tt.want {
			t.Errorf("Route(%q, %q) = %s, want %s", tt.productID, tt.modelID, got, tt.want)
		}
	}
}

func TestSuggestion_Key(t *testing.T) {
	a := Suggestion{Label: "A", ProductID: "p1", ModelID: "m"}
	b := Suggestion{Label: "A", ProductID: "p1"}
	if a.Key() == b.Key() {
		t.Error("model id should be part of the key")
	}
}
