package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "exports/fra_cleaned.csv", want: "exports/fra_cleaned.csv"},
		{name: "simple prefix", prefix: "root", key: "exports/fra_cleaned.csv", want: "root/exports/fra_cleaned.csv"},
		{name: "prefix trailing slash", prefix: "root/", key: "exports/fra_cleaned.csv", want: "root/exports/fra_cleaned.csv"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/exports/fra_cleaned.csv", want: "root/exports/fra_cleaned.csv"},
		{name: "nested prefix", prefix: "root/sub", key: "exports/fra_cleaned.csv", want: "root/sub/exports/fra_cleaned.csv"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}
