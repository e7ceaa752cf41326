package bytesize

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ByteSize
		wantErr bool
	}{
		{"plain zero", "0", 0, false},
		{"plain bytes", "1024", 1024, false},
		{"bytes B", "1024B", 1024, false},

		{"kibibytes Ki", "1Ki", 1024, false},
		{"kibibytes KiB", "1KiB", 1024, false},
		{"mebibytes MiB", "64MiB", 64 * MiB, false},
		{"gibibytes Gi", "1Gi", GiB, false},

		{"kilobytes KB", "1KB", 1000, false},
		{"megabytes MB", "100MB", 100 * MB, false},
		{"gigabytes G", "1G", GB, false},

		{"lowercase", "64mib", 64 * MiB, false},
		{"leading space", "  1Gi", GiB, false},
		{"space between", "64 MiB", 64 * MiB, false},
		{"float", "1.5Mi", ByteSize(1.5 * 1024 * 1024), false},

		{"empty string", "", 0, true},
		{"whitespace only", "   ", 0, true},
		{"invalid unit", "1Xi", 0, true},
		{"negative number", "-1Gi", 0, true},
		{"garbage", "abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseByteSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseByteSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseByteSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		in   ByteSize
		want string
	}{
		{512, "512 B"},
		{64 * MiB, "64 MiB"},
		{GiB, "1.0 GiB"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("ByteSize(%d).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	type doc struct {
		Size ByteSize `yaml:"size"`
	}

	out, err := yaml.Marshal(doc{Size: 64 * MiB})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "size: 64 MiB\n" {
		t.Errorf("unexpected YAML %q", out)
	}

	var back doc
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Size != 64*MiB {
		t.Errorf("round trip = %d, want %d", back.Size, 64*MiB)
	}
}
