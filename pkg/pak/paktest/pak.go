// Package paktest writes PAK archives for tests.
package paktest

import (
	"bytes"
	"encoding/binary"
	"os"
	"sort"

	"github.com/Faultbox/bsp2svg/pkg/encoding"
)

// Build encodes files as a PAK archive. Entries are written in name order.
func Build(files map[string][]byte) []byte {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var body bytes.Buffer
	var table bytes.Buffer
	offset := int32(12)

	for _, name := range names {
		data := files[name]
		table.Write(encoding.ToFixedString(name, 56))
		binary.Write(&table, binary.LittleEndian, offset)
		binary.Write(&table, binary.LittleEndian, int32(len(data)))
		body.Write(data)
		offset += int32(len(data))
	}

	buf := new(bytes.Buffer)
	buf.WriteString("PACK")
	binary.Write(buf, binary.LittleEndian, offset)
	binary.Write(buf, binary.LittleEndian, int32(table.Len()))
	buf.Write(body.Bytes())
	buf.Write(table.Bytes())
	return buf.Bytes()
}

// Write builds an archive and writes it to path.
func Write(path string, files map[string][]byte) error {
	return os.WriteFile(path, Build(files), 0644)
}
