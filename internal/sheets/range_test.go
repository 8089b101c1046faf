package sheets

import "testing"

func TestParseRange(t *testing.T) {
	tests := []struct {
		input    string
		expected Range
		hasError bool
	}{
		{"Next!A2:N11", Range{Sheet: "Next", StartCol: 1, StartRow: 2, EndCol: 14, EndRow: 11}, false},
		{"Next!A:A", Range{Sheet: "Next", StartCol: 1, EndCol: 1}, false},
		{"Subscribers!A2:D", Range{Sheet: "Subscribers", StartCol: 1, StartRow: 2, EndCol: 4}, false},
		{"Subscriptions!1:1", Range{Sheet: "Subscriptions", StartRow: 1, EndRow: 1}, false},
		{"Log!A:B5", Range{Sheet: "Log", StartCol: 1, StartRow: 1, EndCol: 2, EndRow: 5}, false},
		{"Log!b3", Range{Sheet: "Log", StartCol: 2, StartRow: 3, EndCol: 2, EndRow: 3}, false},
		{"'My Sheet'!AA1:AB2", Range{Sheet: "My Sheet", StartCol: 27, StartRow: 1, EndCol: 28, EndRow: 2}, false},
		{"Next", Range{Sheet: "Next"}, false},
		{"!A1", Range{}, true},
		{"Next!", Range{}, true},
		{"Next!A0", Range{}, true},
		{"Next!A:5", Range{}, true},
		{"Next!A1B", Range{}, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			result, err := ParseRange(test.input)
			if test.hasError {
				if err == nil {
					t.Errorf("Expected error for '%s', got %+v", test.input, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result != test.expected {
				t.Errorf("Expected %+v, got %+v", test.expected, result)
			}
		})
	}
}

func TestRangeString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Next!A2:N11", "Next!A2:N11"},
		{"Log!A:B", "Log!A:B"},
		{"Subscriptions!1:1", "Subscriptions!1:1"},
		{"Next", "Next"},
	}

	for _, test := range tests {
		r, err := ParseRange(test.input)
		if err != nil {
			t.Fatalf("Unexpected error for '%s': %v", test.input, err)
		}
		if r.String() != test.expected {
			t.Errorf("Expected '%s', got '%s'", test.expected, r.String())
		}
	}
}

func TestColumnName(t *testing.T) {
	tests := []struct {
		input    int
		expected string
	}{
		{1, "A"},
		{14, "N"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
		{53, "BA"},
		{0, ""},
	}

	for _, test := range tests {
		if result := ColumnName(test.input); result != test.expected {
			t.Errorf("For %d, expected '%s', got '%s'", test.input, test.expected, result)
		}
	}
}
