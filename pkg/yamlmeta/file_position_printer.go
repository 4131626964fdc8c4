// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/yinclang/yinc/pkg/filepos"
)

// FilePositionPrinter is a debug dump of an AST annotated with each node's
// source position, used behind the CLI's --debug flag instead of a general
// purpose pretty-printer.
type FilePositionPrinter struct {
	writer   io.Writer
	locWidth int
}

func NewFilePositionPrinter(writer io.Writer) *FilePositionPrinter {
	return &FilePositionPrinter{writer: writer}
}

func (p *FilePositionPrinter) Print(ds *DocumentSet) {
	fmt.Fprint(p.writer, p.PrintStr(ds))
}

func (p *FilePositionPrinter) PrintStr(ds *DocumentSet) string {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "%s[docset]\n", p.lineStr(ds.Position))
	for _, doc := range ds.Items {
		p.print(doc.Value, "  ", buf)
	}
	return buf.String()
}

func (p *FilePositionPrinter) print(n Node, indent string, writer io.Writer) {
	switch typed := n.(type) {
	case *Mapping:
		for _, item := range typed.Items {
			if isLeaf(item.Value) {
				fmt.Fprintf(writer, "%s%s%s: %s\n", p.lineStr(item.Value.GetPosition()), indent, item.Key, leafStr(item.Value))
			} else {
				fmt.Fprintf(writer, "%s%s%s:\n", p.lineStr(item.KeyPos), indent, item.Key)
				p.print(item.Value, indent+"  ", writer)
			}
		}
	case *Sequence:
		for i, item := range typed.Items {
			if isLeaf(item) {
				fmt.Fprintf(writer, "%s%s[%d] %s\n", p.lineStr(item.GetPosition()), indent, i, leafStr(item))
			} else {
				fmt.Fprintf(writer, "%s%s[%d]\n", p.lineStr(item.GetPosition()), indent, i)
				p.print(item, indent+"  ", writer)
			}
		}
	case *Scalar:
		fmt.Fprintf(writer, "%s%s%s\n", p.lineStr(typed.Position), indent, leafStr(typed))
	}
}

func isLeaf(n Node) bool {
	_, ok := n.(*Scalar)
	return ok
}

func leafStr(n Node) string {
	s, ok := n.(*Scalar)
	if !ok {
		return ""
	}
	switch s.SubKind {
	case ScalarNull:
		return "null"
	case ScalarString:
		return strconv.Quote(s.Value.(string))
	default:
		return fmt.Sprintf("%v", s.Value)
	}
}

func (p *FilePositionPrinter) lineStr(pos *filepos.Position) string {
	str := ""
	if pos.IsKnown() {
		str = pos.AsCompactString()
	}
	width := len(str)
	if width > p.locWidth {
		p.locWidth = width + 4
	}
	return fmt.Sprintf(fmt.Sprintf("%%%ds | ", p.locWidth), str)
}
