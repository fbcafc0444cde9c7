package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit_CamelCaseTransitions(t *testing.T) {
	// lower→upper boundaries recover natural words. The trailing "KB" is
	// shorter than the token floor, ends up held, and is dropped at end of
	// input — that loss is part of the contract.
	assert.Equal(t, []string{"http", "server", "max", "size"},
		SplitAll("httpServerMaxSizeKB"))
}

func TestSplit_ShortAcronymKeepsBoundaryTight(t *testing.T) {
	// A capital run of ≤3 donates its last letter to the next word:
	// "XMLParser" breaks as XML|Parser, not XMLP|arser. The digit is a hard
	// separator and the lone "V" is held then dropped.
	assert.Equal(t, []string{"xml", "parser"}, SplitAll("XMLParserV2"))
}

func TestSplit_LongAcronymBreaksAtTransition(t *testing.T) {
	// Runs longer than 3 break at the transition itself, so the boundary
	// capital stays inside the acronym token.
	assert.Equal(t, []string{"https", "erver"}, SplitAll("HTTPServer"))
}

func TestSplit_HeldFragmentPrefixesNextToken(t *testing.T) {
	// "a" is below the floor: it is held and re-emitted as a prefix of the
	// next qualifying sub-word, yielding both forms.
	assert.Equal(t, []string{"setting", "asetting"}, SplitAll("aSetting"))
}

func TestSplit_NewShortFragmentReplacesHeld(t *testing.T) {
	// Only one fragment is held at a time; "b" displaces "a".
	assert.Equal(t, []string{"setting", "bsetting"}, SplitAll("a_b_setting"))
}

func TestSplit_TrailingShortFragmentDropped(t *testing.T) {
	// Nothing follows "id", so it is silently dropped.
	assert.Equal(t, []string{"get", "user"}, SplitAll("get_user_id"))
}

func TestSplit_SnakeCase(t *testing.T) {
	assert.Equal(t, []string{"parse", "file", "contents"},
		SplitAll("parse_file_contents"))
}

func TestSplit_DigitsArehardSeparators(t *testing.T) {
	assert.Equal(t, []string{"cents", "mycents"}, SplitAll("my2Cents"))
}

func TestSplit_DelimiterOnlyInputYieldsNothing(t *testing.T) {
	for _, in := range []string{"", "123", "___", "--..--", "4_2", "  \t "} {
		assert.Empty(t, SplitAll(in), "input %q", in)
	}
}

func TestSplit_SingleShortFragmentNeverYieldedAlone(t *testing.T) {
	assert.Empty(t, SplitAll("ab"))
	assert.Empty(t, SplitAll("x"))
}

func TestSplit_AllCapsFragmentEmittedWhole(t *testing.T) {
	assert.Equal(t, []string{"login"}, SplitAll("LOGIN"))
}

func TestSplit_TrimsWhitespace(t *testing.T) {
	assert.Equal(t, []string{"handler"}, SplitAll("  handler\n"))
}

func TestSplit_TruncatesLongIdentifiers(t *testing.T) {
	long := strings.Repeat("a", MaxIdentifierLength+50)
	got := SplitAll(long)
	assert.Len(t, got, 1)
	assert.Len(t, got[0], MaxIdentifierLength)
}

func TestSplit_NonASCIIRunesAreSeparators(t *testing.T) {
	// Multi-byte runes never join a fragment; only ASCII letters do.
	assert.Equal(t, []string{"caf", "shop"}, SplitAll("caféShop"))
}

func TestSplit_Idempotent(t *testing.T) {
	inputs := []string{"httpServerMaxSizeKB", "XMLParserV2", "aSetting", "x_y_z"}
	for _, in := range inputs {
		assert.Equal(t, SplitAll(in), SplitAll(in), "input %q", in)
	}
}

func TestSplit_LazyConsumptionStopsEarly(t *testing.T) {
	var got []string
	for tok := range Split("oneTwoThreeFour") {
		got = append(got, tok)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"one", "two"}, got)
}
