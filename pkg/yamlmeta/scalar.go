// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

import (
	"math"
	"strconv"
	"strings"
)

// classifyScalar decides the sub-kind of a trimmed, already-unquoted raw
// token, in the order the component design mandates: exact null/bool/float
// spellings (case-insensitive), then signed integer (only for negative
// values; "-0" is re-classified to unsigned), then unsigned integer, then
// double, and finally string.
func classifyScalar(raw string) (ScalarKind, interface{}) {
	switch raw {
	case "~":
		return ScalarNull, nil
	}

	switch strings.ToLower(raw) {
	case "null":
		return ScalarNull, nil
	case "true":
		return ScalarBool, true
	case "false":
		return ScalarBool, false
	case ".inf":
		return ScalarDouble, math.Inf(1)
	case "-.inf":
		return ScalarDouble, math.Inf(-1)
	case ".nan":
		return ScalarDouble, math.NaN()
	}

	if raw == "-0" {
		return ScalarUint, uint64(0)
	}

	if strings.HasPrefix(raw, "-") {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil && i < 0 {
			return ScalarInt, i
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return ScalarDouble, f
		}
		return ScalarString, raw
	}

	if u, err := strconv.ParseUint(raw, 10, 64); err == nil {
		return ScalarUint, u
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return ScalarDouble, f
	}

	return ScalarString, raw
}

// classifyQuotedString is the classification for a quoted scalar: always a
// string, regardless of its contents (quoting opts a literal out of the
// null/bool/number spellings above).
func classifyQuotedString(s string) (ScalarKind, interface{}) {
	return ScalarString, s
}
