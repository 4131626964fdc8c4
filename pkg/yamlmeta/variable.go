// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

import "sort"

// recordVariableRef notes that node references variable name, either as its
// entire value ("$name") or as a placeholder inside a larger string
// ("prefix-$name-suffix"). The variable engine uses this table twice: once
// while parsing, to know which leaves need substitution once an
// including document supplies a binding, and once while packing, to
// recover the original "$name" template instead of emitting the
// substituted value.
func (ctx *parseContext) recordVariableRef(name string, node *Scalar, inString bool) {
	ctx.vars[name] = append(ctx.vars[name], &varRef{node: node, inString: inString})
}

// bindVariable applies value to every leaf that referenced name, replacing
// whole-value references outright and substituting in-string references
// via their string sub-kind, and marks name as bound so it no longer counts
// toward unboundVariableNames.
func (ctx *parseContext) bindVariable(name string, value Node) {
	ctx.boundVars[name] = true

	for _, ref := range ctx.vars[name] {
		if ref.inString {
			// In-string substitution only makes sense against a string
			// (or string-coercible) binding; non-string bindings used
			// in-string are stringified the same way the packer renders
			// scalars.
			str, _ := scalarAsDisplayString(value)
			cur, _ := ref.node.Value.(string)
			ref.node.Value = substituteVariable(cur, name, str)
			continue
		}

		if s, ok := value.(*Scalar); ok {
			ref.node.SubKind = s.SubKind
			ref.node.Value = s.Value
		}
	}
}

func scalarAsDisplayString(n Node) (string, bool) {
	s, ok := n.(*Scalar)
	if !ok {
		return "", false
	}
	if str, ok := s.AsString(); ok {
		return str, true
	}
	return FormatScalarLiteral(s.SubKind, s.Value), true
}

func substituteVariable(template, name, value string) string {
	needle := "$" + name
	out := make([]byte, 0, len(template))
	for i := 0; i < len(template); {
		if i+len(needle) <= len(template) && template[i:i+len(needle)] == needle {
			out = append(out, value...)
			i += len(needle)
			continue
		}
		out = append(out, template[i])
		i++
	}
	return string(out)
}

// unboundVariableNames returns, in sorted order, every variable name
// referenced somewhere in the document that never received a binding.
func (ctx *parseContext) unboundVariableNames() []string {
	var names []string
	for name := range ctx.vars {
		if !ctx.boundVars[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
