package crane

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumParse(t *testing.T) {
	d, err := ParseDriverType("hd3")
	require.NoError(t, err)
	assert.Equal(t, Hd3, d)
	assert.Equal(t, "Hd3", d.String())

	_, err = ParseLiftClass("Hc9")
	assert.Error(t, err)

	var zero LoadCombination
	assert.Equal(t, "LoadCombination(0)", zero.String())
}

func TestEnumJSON(t *testing.T) {
	var v struct {
		Work MechanismWorkType `json:"work"`
		LC   LoadCombination   `json:"lc"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"work":"M7","lc":"C1"}`), &v))
	assert.Equal(t, M7, v.Work)
	assert.Equal(t, C1, v.LC)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"work":"M7","lc":"C1"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"work":"M9"}`), &v))
}

func TestWorkTypeGroups(t *testing.T) {
	h := Hook{LoadCapacityM13: 25, LoadCapacityM46: 23, LoadCapacityM78: 21}
	tests := []struct {
		work MechanismWorkType
		want float64
	}{
		{M1, 25}, {M3, 25},
		{M4, 23}, {M6, 23},
		{M7, 21}, {M8, 21},
	}
	for _, tc := range tests {
		t.Run(tc.work.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, h.Capacity(tc.work))
		})
	}
}

func TestInitialDataValidate(t *testing.T) {
	require.NoError(t, SampleData().Validate())

	d := SampleData()
	d.Hooks = nil
	assert.Error(t, d.Validate())

	d = SampleData()
	d.LiftClass = 0
	assert.Error(t, d.Validate())

	d = SampleData()
	d.Bearings[0].OuterDiameter = 0
	assert.ErrorContains(t, d.Validate(), "bearings[0].outer_diameter")
}

func TestQueryJSON(t *testing.T) {
	q := Query{ChooseUserHook: &ChooseUserHookQuery{Variants: []Hook{{Gost: "GOST 34567-85"}}}}
	b, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Contains(t, string(b), `{"ChooseUserHook":{"variants":[{"gost":"GOST 34567-85"`)

	var back Query
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, QueryChooseUserHook, back.Kind())
	assert.Equal(t, "GOST 34567-85", back.ChooseUserHook.Variants[0].Gost)

	require.NoError(t, json.Unmarshal([]byte(`{"RestartEval":{}}`), &back))
	assert.Equal(t, QueryRestartEval, back.Kind())
	assert.Nil(t, back.ChooseUserHook)

	assert.Error(t, json.Unmarshal([]byte(`{"Shutdown":{}}`), &back))
	assert.Error(t, json.Unmarshal([]byte(`{}`), &back))
	_, err = json.Marshal(Query{})
	assert.Error(t, err)
}

func TestReplyUsesChoosenTag(t *testing.T) {
	b, err := json.Marshal(ChooseUserBearingReply{Choosen: Bearing{Name: "8100H"}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"choosen":{"name":"8100H"`)
}

func TestContextSlots(t *testing.T) {
	c := NewContext()
	assert.False(t, Has[UserHookCtx](c))
	assert.Panics(t, func() { Read[UserHookCtx](c) })

	next := Write(c, UserHookCtx{Result: Hook{Gost: "x"}}).Unwrap()
	assert.True(t, Has[UserHookCtx](next))
	assert.False(t, Has[UserHookCtx](c))
	assert.Equal(t, "x", Read[UserHookCtx](next).Result.Gost)

	_, ok := Lookup[BetPhiCtx](next)
	assert.False(t, ok)
	assert.Len(t, next.Slots(), 1)
}
