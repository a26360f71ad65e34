// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package handle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/vidora/pkg/handle"
)

/*
TestNormalize verifies the canonicalization pipeline over representative inputs.
*/
func TestNormalize(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "already canonical", input: "ann_codes", expected: "ann_codes"},
		{name: "uppercase folded", input: "AnnCodes", expected: "anncodes"},
		{name: "spaces become underscores", input: "Ann Codes", expected: "ann_codes"},
		{name: "accents removed", input: "Ánn Cödés", expected: "ann_codes"},
		{name: "special chars replaced", input: "ann@codes!", expected: "ann_codes"},
		{name: "underscore runs collapsed", input: "ann___codes", expected: "ann_codes"},
		{name: "edge underscores trimmed", input: "__ann_codes__", expected: "ann_codes"},
		{name: "surrounding whitespace", input: "  ann codes  ", expected: "ann_codes"},
		{name: "digits kept", input: "user2024", expected: "user2024"},
		{name: "empty input", input: "", expected: ""},
		{name: "only separators", input: "!!!", expected: ""},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, handle.Normalize(testCase.input))
		})
	}
}
