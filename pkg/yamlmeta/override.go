// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

import (
	"fmt"

	"github.com/yinclang/yinc/pkg/filepos"
	"github.com/yinclang/yinc/pkg/presentation"
	"github.com/yinclang/yinc/pkg/yamlerr"
)

// entryIndex returns the index of key within m.Items, or false if absent.
func (m *Mapping) entryIndex(key string) (int, bool) {
	for i, item := range m.Items {
		if item.Key == key {
			return i, true
		}
	}
	return -1, false
}

// mergeOverride applies override object o onto included subtree t, per the
// merge rules of the override merger: kinds must match; a scalar override
// replaces t wholesale; a sequence override appends; a mapping override
// recurses per-key, adding unrecognized keys. Every overwrite or addition
// is appended, in traversal order, to rec so that packing can reconstruct
// the override block later.
func (ctx *parseContext) mergeOverride(o, t Node, path presentation.Path, rec *presentation.Override) (Node, error) {
	if o.Kind() != t.Kind() {
		return nil, yamlerr.New(yamlerr.CannotChangeTypesOfDataInOverride,
			fmt.Sprintf("cannot change types of data in override at '%s': original is %s, override is %s", path, t.Kind(), o.Kind()),
			filepos.NewPointSpan(o.GetPosition()))
	}

	switch o.Kind() {
	case KindScalar:
		os := o.(*Scalar)
		ts := t.(*Scalar)
		rec.Add(presentation.OverrideEntry{Path: path.Self(), OriginalData: ts.Value, HasOriginal: true})
		ts.SubKind = os.SubKind
		ts.Value = os.Value
		return ts, nil

	case KindSequence:
		oa := o.(*Sequence)
		ta := t.(*Sequence)
		base := len(ta.Items)
		for i, item := range oa.Items {
			idx := base + i
			ta.Items = append(ta.Items, item)
			rec.Add(presentation.OverrideEntry{Path: path.Index(idx)})
		}
		return ta, nil

	case KindMapping:
		om := o.(*Mapping)
		tm := t.(*Mapping)
		for _, entry := range om.Items {
			entryPath := path.Key(entry.Key)
			if idx, ok := tm.entryIndex(entry.Key); ok {
				merged, err := ctx.mergeOverride(entry.Value, tm.Items[idx].Value, entryPath, rec)
				if err != nil {
					return nil, err
				}
				tm.Items[idx].Value = merged
			} else {
				tm.Items = append(tm.Items, &MapEntry{
					Key: entry.Key, KeyPos: entry.KeyPos, Value: entry.Value, NodePath: entryPath,
				})
				rec.Add(presentation.OverrideEntry{Path: entryPath})
			}
		}
		return tm, nil

	default:
		return nil, fmt.Errorf("unknown node kind in override merge")
	}
}
