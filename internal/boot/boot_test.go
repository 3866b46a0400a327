package boot

import "testing"

func TestCompressDecompressRoundTrips(t *testing.T) {
	compressed, err := Compress(map[string][]byte{"base": []byte("true: true")})
	if err != nil {
		t.Fatalf("unexpected compress error: %v", err)
	}
	blob, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("unexpected decompress error: %v", err)
	}
	if string(blob.SubBlocks["base"]) != "true: true" {
		t.Fatalf("expected round-tripped base block, got %q", blob.SubBlocks["base"])
	}
}

func TestDecompressRejectsGarbage(t *testing.T) {
	if _, err := Decompress([]byte("not a gzip stream")); err == nil {
		t.Fatal("expected an error for a non-gzip blob")
	}
}

func TestDecompressDigestIsStable(t *testing.T) {
	compressed, err := Compress(map[string][]byte{"base": []byte("x")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Digest != b.Digest {
		t.Fatal("expected the same blob to produce the same digest twice")
	}
}

func TestBootReachesDonePhase(t *testing.T) {
	compressed, err := DefaultBlob()
	if err != nil {
		t.Fatalf("unexpected error building default blob: %v", err)
	}
	rt, err := Boot(compressed)
	if err != nil {
		t.Fatalf("unexpected boot error: %v", err)
	}
	if rt.Phase != PhaseDone {
		t.Fatalf("expected PhaseDone, got %v", rt.Phase)
	}
}

func TestPhaseStringNames(t *testing.T) {
	cases := map[Phase]string{
		PhaseStart:  "START",
		PhaseLoaded: "LOADED",
		PhaseErrors: "ERRORS",
		PhaseMezz:   "MEZZ",
		PhaseDone:   "DONE",
	}
	for p, want := range cases {
		if got := p.String(); got != want {
			t.Fatalf("phase %d: expected %q, got %q", p, want, got)
		}
	}
}
