package target

import (
	"sort"
	"strings"
)

type category uint8

const (
	catFeature category = iota
	catArch
	catBits
	catOS
	numCategories
)

type token struct {
	cat   category
	apply func(*Target)
}

func setArch(a Arch) func(*Target) { return func(t *Target) { t.Arch = a } }

func setBits(b int) func(*Target) { return func(t *Target) { t.Bits = b } }

func setOS(o OS) func(*Target) { return func(t *Target) { t.OS = o } }

func addFeatures(f FeatureSet) func(*Target) { return func(t *Target) { t.Features |= f } }

// overrideTokens is the full token table. Feature tokens cascade: avx2
// requests avx and sse41, avx requests sse41.
var overrideTokens = map[string]token{
	"x86":       {catArch, setArch(X86)},
	"arm":       {catArch, setArch(ARM)},
	"32":        {catBits, setBits(32)},
	"64":        {catBits, setBits(64)},
	"linux":     {catOS, setOS(Linux)},
	"windows":   {catOS, setOS(Windows)},
	"nacl":      {catOS, setOS(NaCl)},
	"osx":       {catOS, setOS(OSX)},
	"android":   {catOS, setOS(Android)},
	"ios":       {catOS, setOS(IOS)},
	"sse41":     {catFeature, addFeatures(SSE41)},
	"avx":       {catFeature, addFeatures(SSE41 | AVX)},
	"avx2":      {catFeature, addFeatures(SSE41 | AVX | AVX2)},
	"cuda":      {catFeature, addFeatures(CUDA)},
	"ptx":       {catFeature, addFeatures(CUDA)},
	"opencl":    {catFeature, addFeatures(OpenCL)},
	"gpu_debug": {catFeature, addFeatures(GPUDebug)},
}

var duplicateKinds = [numCategories]ParseErrorKind{
	catArch: ErrDuplicateArch,
	catBits: ErrDuplicateBits,
	catOS:   ErrDuplicateOS,
}

// ResolveOverride applies an override string to base. The feature set is
// reset first, then every hyphen-separated segment is applied left to right.
// Empty segments are ordinary tokens and fail as unrecognized. On error base
// is returned unchanged together with a *ParseError.
func ResolveOverride(raw string, base Target) (Target, error) {
	t := base
	t.Features = 0

	var specified [numCategories]bool
	for i, seg := range strings.Split(raw, "-") {
		tok, ok := overrideTokens[seg]
		if !ok {
			return base, &ParseError{Kind: ErrUnknownToken, Input: raw, Token: seg, Index: i}
		}
		tok.apply(&t)

		if tok.cat == catFeature {
			continue
		}
		if specified[tok.cat] {
			return base, &ParseError{Kind: duplicateKinds[tok.cat], Input: raw, Token: seg, Index: i}
		}
		specified[tok.cat] = true
	}
	return t, nil
}

// Tokens returns the accepted override tokens in sorted order.
func Tokens() []string {
	out := make([]string, 0, len(overrideTokens))
	for name := range overrideTokens {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
