// File: internal/llmutil/parser_test.go
package llmutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Label string `json:"label"`
	Box   []int  `json:"box_2d"`
}

func TestDecodeResponse_PlainJSON(t *testing.T) {
	out, err := DecodeResponse[sample](`{"label":"mute_audio","box_2d":[1,2,3,4]}`)
	require.NoError(t, err)
	assert.Equal(t, "mute_audio", out.Label)
	assert.Equal(t, []int{1, 2, 3, 4}, out.Box)
}

func TestDecodeResponse_FencedObject(t *testing.T) {
	resp := "```json\n{\"label\":\"leave_call\",\"box_2d\":[5,6,7,8]}\n```"
	out, err := DecodeResponse[sample](resp)
	require.NoError(t, err)
	assert.Equal(t, "leave_call", out.Label)
}

func TestDecodeResponse_FencedArray(t *testing.T) {
	resp := "```json\n[{\"label\":\"a\",\"box_2d\":[0,0,1,1]},{\"label\":\"b\",\"box_2d\":[1,1,2,2]}]\n```"
	out, err := DecodeResponse[[]sample](resp)
	require.NoError(t, err)
	require.Len(t, *out, 2)
	assert.Equal(t, "b", (*out)[1].Label)
}

func TestDecodeResponse_ConversationalWrapping(t *testing.T) {
	resp := `Here are the detected controls: [{"label":"x","box_2d":[0,0,1,1]}] Let me know if you need more.`
	out, err := DecodeResponse[[]sample](resp)
	require.NoError(t, err)
	require.Len(t, *out, 1)
}

func TestDecodeResponse_ProseBeforeFencedArray(t *testing.T) {
	resp := "Sure, here is the list you asked for:\n```json\n[{\"label\":\"end_call\",\"box_2d\":[2,3,4,5]}]\n```\nAnything else?"
	out, err := DecodeResponse[[]sample](resp)
	require.NoError(t, err)
	require.Len(t, *out, 1)
	assert.Equal(t, "end_call", (*out)[0].Label)
}

func TestDecodeResponse_ArrayPreferredWhenItOpensFirst(t *testing.T) {
	resp := `Detected: [{"label":"a","box_2d":[0,0,1,1]},{"label":"b","box_2d":[1,1,2,2]}] in total.`
	out, err := DecodeResponse[[]sample](resp)
	require.NoError(t, err)
	require.Len(t, *out, 2)
}

func TestDecodeResponse_FenceWithoutLanguageTag(t *testing.T) {
	resp := "```\n{\"label\":\"y\",\"box_2d\":[9,9,9,9]}\n```"
	out, err := DecodeResponse[sample](resp)
	require.NoError(t, err)
	assert.Equal(t, "y", out.Label)
}

func TestDecodeResponse_InvalidPayload(t *testing.T) {
	_, err := DecodeResponse[sample]("the screen is empty, nothing to report")
	assert.Error(t, err)
}
