package target

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
)

var baseTarget = Target{OS: Linux, Arch: X86, Bits: 64, Features: SSE41 | AVX | AVX2}

func TestResolveOverrideCascade(t *testing.T) {
	cases := []struct {
		raw  string
		want FeatureSet
	}{
		{"sse41", SSE41},
		{"avx", SSE41 | AVX},
		{"avx2", SSE41 | AVX | AVX2},
		{"sse41-avx", SSE41 | AVX},
		{"avx-avx", SSE41 | AVX},
		{"cuda", CUDA},
		{"ptx", CUDA},
		{"opencl-gpu_debug", OpenCL | GPUDebug},
		{"cuda-opencl", CUDA | OpenCL},
		{"gpu_debug", GPUDebug},
	}
	for _, tc := range cases {
		got, err := ResolveOverride(tc.raw, baseTarget)
		if err != nil {
			t.Fatalf("ResolveOverride(%q): %v", tc.raw, err)
		}
		if got.Features != tc.want {
			t.Fatalf("ResolveOverride(%q).Features = %s, want %s", tc.raw, got.Features, tc.want)
		}
		if got.OS != baseTarget.OS || got.Arch != baseTarget.Arch || got.Bits != baseTarget.Bits {
			t.Fatalf("ResolveOverride(%q) changed unspecified fields: %+v", tc.raw, got)
		}
	}
}

func TestResolveOverrideResetsFeatures(t *testing.T) {
	got, err := ResolveOverride("x86-32-windows", baseTarget)
	if err != nil {
		t.Fatalf("ResolveOverride: %v", err)
	}
	want := Target{OS: Windows, Arch: X86, Bits: 32}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestResolveOverrideSameAsImplied(t *testing.T) {
	a, errA := ResolveOverride("sse41-avx", baseTarget)
	b, errB := ResolveOverride("avx", baseTarget)
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v, %v", errA, errB)
	}
	if a.Features != b.Features {
		t.Fatalf("sse41-avx = %s, avx = %s", a.Features, b.Features)
	}
}

func TestResolveOverrideUnknownToken(t *testing.T) {
	cases := []struct {
		raw   string
		token string
	}{
		{"x86-bogus-64", "bogus"},
		{"", ""},
		{"x86--64", ""},
		{"x86-64-", ""},
		{"X86", "X86"},
		{"host", "host"},
	}
	for _, tc := range cases {
		got, err := ResolveOverride(tc.raw, baseTarget)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("ResolveOverride(%q) err = %v, want *ParseError", tc.raw, err)
		}
		if pe.Kind != ErrUnknownToken || pe.Token != tc.token {
			t.Fatalf("ResolveOverride(%q) = kind %d token %q, want unknown token %q", tc.raw, pe.Kind, pe.Token, tc.token)
		}
		if got != baseTarget {
			t.Fatalf("ResolveOverride(%q) returned a partial target %+v", tc.raw, got)
		}
	}

	_, err := ResolveOverride("x86-bogus-64", baseTarget)
	msg := err.Error()
	for _, want := range []string{"bogus", "x86-bogus-64", "sse41", "android", "Expected format"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("diagnostic %q does not mention %q", msg, want)
		}
	}
}

func TestResolveOverrideDuplicateCategory(t *testing.T) {
	cases := []struct {
		raw  string
		kind ParseErrorKind
		text string
	}{
		{"linux-windows", ErrDuplicateOS, "specifies OS twice"},
		{"x86-64-arm", ErrDuplicateArch, "specifies architecture twice"},
		{"32-linux-64", ErrDuplicateBits, "specifies bits twice"},
		{"x86-x86", ErrDuplicateArch, "specifies architecture twice"},
	}
	for _, tc := range cases {
		_, err := ResolveOverride(tc.raw, baseTarget)
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Kind != tc.kind {
			t.Fatalf("ResolveOverride(%q) err = %v, want kind %d", tc.raw, err, tc.kind)
		}
		if !strings.Contains(err.Error(), tc.text) {
			t.Fatalf("ResolveOverride(%q) diagnostic %q lacks %q", tc.raw, err.Error(), tc.text)
		}
	}
}

// Every combination of at most one arch, bits and os token plus any subset
// of feature tokens, in any order, yields the named fields and the union of
// the cascaded features.
func TestResolveOverrideCombinations(t *testing.T) {
	archs := []struct {
		tok  string
		arch Arch
	}{{"", 0}, {"x86", X86}, {"arm", ARM}}
	bitsToks := []struct {
		tok  string
		bits int
	}{{"", 0}, {"32", 32}, {"64", 64}}
	oses := []struct {
		tok string
		os  OS
	}{{"", 0}, {"linux", Linux}, {"windows", Windows}, {"nacl", NaCl}, {"osx", OSX}, {"android", Android}, {"ios", IOS}}
	feats := []struct {
		tok  string
		want FeatureSet
	}{
		{"sse41", SSE41}, {"avx", SSE41 | AVX}, {"avx2", SSE41 | AVX | AVX2},
		{"cuda", CUDA}, {"ptx", CUDA}, {"opencl", OpenCL}, {"gpu_debug", GPUDebug},
	}

	rng := rand.New(rand.NewSource(7))
	base := Target{OS: IOS, Arch: ARM, Bits: 32, Features: AVX2}
	for _, a := range archs {
		for _, b := range bitsToks {
			for _, o := range oses {
				for mask := 0; mask < 1<<len(feats); mask += 5 {
					var toks []string
					want := base
					want.Features = 0
					if a.tok != "" {
						toks = append(toks, a.tok)
						want.Arch = a.arch
					}
					if b.tok != "" {
						toks = append(toks, b.tok)
						want.Bits = b.bits
					}
					if o.tok != "" {
						toks = append(toks, o.tok)
						want.OS = o.os
					}
					for i, f := range feats {
						if mask&(1<<i) != 0 {
							toks = append(toks, f.tok)
							want.Features |= f.want
						}
					}
					if len(toks) == 0 {
						continue
					}
					rng.Shuffle(len(toks), func(i, j int) { toks[i], toks[j] = toks[j], toks[i] })
					raw := strings.Join(toks, "-")

					got, err := ResolveOverride(raw, base)
					if err != nil {
						t.Fatalf("ResolveOverride(%q): %v", raw, err)
					}
					if got != want {
						t.Fatalf("ResolveOverride(%q) = %+v, want %+v", raw, got, want)
					}
				}
			}
		}
	}
}

func TestTargetStringRoundTrip(t *testing.T) {
	for _, raw := range []string{"x86-64-linux-sse41-avx-avx2", "arm-32-android", "x86-32-windows-opencl-gpu_debug", "x86-64-osx-cuda"} {
		parsed, err := ResolveOverride(raw, Target{})
		if err != nil {
			t.Fatalf("ResolveOverride(%q): %v", raw, err)
		}
		if parsed.String() != raw {
			t.Fatalf("String() = %q, want %q", parsed.String(), raw)
		}
		again, err := ResolveOverride(parsed.String(), Target{})
		if err != nil || again != parsed {
			t.Fatalf("round trip of %q: %+v, %v", raw, again, err)
		}
	}
}

func TestFromEnvironment(t *testing.T) {
	env := map[string]string{"SET": "arm-32-ios", "EMPTY": "", "BAD": "linux-osx"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	got, applied, err := FromEnvironment(lookup, "MISSING", baseTarget)
	if err != nil || applied || got != baseTarget {
		t.Fatalf("missing variable: %+v, %v, %v", got, applied, err)
	}

	got, applied, err = FromEnvironment(lookup, "SET", baseTarget)
	if err != nil || !applied {
		t.Fatalf("SET: applied=%v err=%v", applied, err)
	}
	if got != (Target{OS: IOS, Arch: ARM, Bits: 32}) {
		t.Fatalf("SET: got %+v", got)
	}

	if _, _, err = FromEnvironment(lookup, "EMPTY", baseTarget); err == nil {
		t.Fatalf("empty override accepted")
	}
	if _, _, err = FromEnvironment(lookup, "BAD", baseTarget); err == nil {
		t.Fatalf("duplicate OS accepted")
	}
}
