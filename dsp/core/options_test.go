package core

import "testing"

func TestApplyOptions(t *testing.T) {
	cfg := ApplyOptions(WithSampleRate(96000), WithBlockSize(256), WithSeed(7), WithMaxIRPartitions(16))
	if cfg.SampleRate != 96000 {
		t.Fatalf("sample rate = %v, want 96000", cfg.SampleRate)
	}
	if cfg.BlockSize != 256 {
		t.Fatalf("block size = %d, want 256", cfg.BlockSize)
	}
	if cfg.Seed != 7 {
		t.Fatalf("seed = %d, want 7", cfg.Seed)
	}
	if cfg.MaxIRPartitions != 16 {
		t.Fatalf("max partitions = %d, want 16", cfg.MaxIRPartitions)
	}
}

func TestInvalidOptionsIgnored(t *testing.T) {
	cfg := ApplyOptions(WithSampleRate(0), WithBlockSize(-1), WithSeed(0), WithMaxIRPartitions(0), nil)
	def := DefaultConfig()
	if cfg != def {
		t.Fatalf("cfg = %#v, want %#v", cfg, def)
	}
}

func TestMaxIRPartitionsCapped(t *testing.T) {
	cfg := ApplyOptions(WithMaxIRPartitions(1 << 20))
	if cfg.MaxIRPartitions != DefaultMaxIRPartitions {
		t.Fatalf("max partitions = %d, want %d", cfg.MaxIRPartitions, DefaultMaxIRPartitions)
	}
	if DefaultMaxIRPartitions != 937 {
		t.Fatalf("DefaultMaxIRPartitions = %d, want 937", DefaultMaxIRPartitions)
	}
}

func TestValidRanges(t *testing.T) {
	tests := []struct {
		sr   float64
		want bool
	}{
		{7999, false}, {8000, true}, {44100, true}, {192000, true}, {192001, false},
	}
	for _, tc := range tests {
		if got := ValidSampleRate(tc.sr); got != tc.want {
			t.Errorf("ValidSampleRate(%v) = %v, want %v", tc.sr, got, tc.want)
		}
	}

	for bs, want := range map[int]bool{16: false, 31: false, 32: true, 128: true, 512: true, 513: false} {
		if got := ValidBlockSize(bs); got != want {
			t.Errorf("ValidBlockSize(%d) = %v, want %v", bs, got, want)
		}
	}
}
