package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valu/internal/vdxf"
)

const (
	skillFields   = `{"title":"Go","organization":"ACME","body":"Ships code","referenceID":"708d0ebedd71e84b19e4b43a9bf679547ba025739ce02af01d0e878c9b58a3fb"}`
	testReference = "f0e88c0a40e1681634faa6e6b23d5c60b413a4669817df55574a47086dd7e924"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := RootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), errOut.String(), err
}

// skill_claim.hex is a regression snapshot of the claim encoder.
func TestClaimBuildMatchesSnapshot(t *testing.T) {
	raw, err := os.ReadFile("../../internal/claim/testdata/skill_claim.hex")
	require.NoError(t, err)

	out, _, err := run(t, skillFields, "claim", "build", "--type", "skill")
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(string(raw)), out)

	decoded, _, err := run(t, "", "decode", "claim", "--type", "skill", out)
	require.NoError(t, err)
	assert.Contains(t, decoded, `"type":"skill","format":"descriptor-sequence"`)
}

func TestClaimBuildIdentityUpdate(t *testing.T) {
	out, _, err := run(t, skillFields, "claim", "build", "--type", "skill", "--identity-update")
	require.NoError(t, err)

	var update vdxf.IdentityUpdate
	require.NoError(t, json.Unmarshal([]byte(out), &update))
	keys, err := update.Keys()
	require.NoError(t, err)
	assert.Equal(t, []vdxf.Identifier{vdxf.ClaimSkillKey.ID}, keys)
}

func TestClaimAggregateAndDecode(t *testing.T) {
	input := `[{"type":"skill","title":"Go","organization":"ACME","body":"Ships code"},
	           {"type":"employment","title":"Developer","organization":"ACME Widgets","body":"...","dates":"2019-2020"}]`

	out, stderr, err := run(t, input, "claim", "aggregate", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, stderr, "valu_records_encoded_total")

	decoded, _, err := run(t, "", "decode", "claims", out)
	require.NoError(t, err)
	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(decoded), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "skill", items[0]["type"])
	assert.Equal(t, "employment", items[1]["type"])
}

func TestRecordBuildTagged(t *testing.T) {
	out, _, err := run(t, skillFields, "record", "build", "--type", "skill", "--tagged")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "010005"), out)

	decoded, _, err := run(t, "", "decode", "record", "--format", "document-tagged", out)
	require.NoError(t, err)
	assert.Contains(t, decoded, `"title":"Go"`)

	mmr, _, err := run(t, skillFields, "record", "build", "--type", "skill", "--mmr", "alice@")
	require.NoError(t, err)
	assert.Contains(t, mmr, `"label":"receiving_identity"`)
}

func TestEndorse(t *testing.T) {
	out, _, err := run(t, "", "endorse",
		"--endorsee", "candidate.vrsctest@",
		"--message", "I endorse X has done Y.",
		"--reference", testReference,
	)
	require.NoError(t, err)
	assert.Equal(t, "01001363616e6469646174652e767273637465737440174920656e646f72736520582068617320646f6e6520592e20"+testReference, out)

	decoded, _, err := run(t, "", "decode", "endorsement", out)
	require.NoError(t, err)
	assert.Contains(t, decoded, `"endorsee":"candidate.vrsctest@"`)

	t.Run("signed", func(t *testing.T) {
		t.Setenv("VALU_SIGNER_KEY", strings.Repeat("01", 32))
		out, _, err := run(t, "", "endorse", "-e", "a@", "-m", "hi", "--sign", "--json")
		require.NoError(t, err)
		assert.Contains(t, out, `"signature":`)
	})

	t.Run("sign without key", func(t *testing.T) {
		_, _, err := run(t, "", "endorse", "-e", "a@", "-m", "hi", "--sign")
		assert.Error(t, err)
	})
}

func TestKeys(t *testing.T) {
	out, _, err := run(t, "", "keys")
	require.NoError(t, err)
	assert.Contains(t, out, vdxf.ClaimKey.ID.String()+"\tnone\t"+vdxf.ClaimKey.Name)
	assert.Contains(t, out, vdxf.DataDescriptorKey.ID.String())
}

func TestDecodeRejects(t *testing.T) {
	_, _, err := run(t, "", "decode", "endorsement", "zz")
	assert.Error(t, err)
	_, _, err = run(t, "", "decode", "widgets", "00")
	assert.Error(t, err)
	_, _, err = run(t, "", "claim", "build", "--type", "bogus")
	assert.Error(t, err)
}
