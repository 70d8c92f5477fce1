/*
 * format.go, part of qetraj.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package delta

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format for documents.
type Format int

const (
	JSON Format = iota
	YAML
	MsgPack //binary
)

func (f Format) String() string {
	switch f {
	case YAML:
		return "yaml"
	case MsgPack:
		return "msgpack"
	}
	return "json"
}

// Compression is the compression applied to a serialized document.
type Compression int

const (
	None Compression = iota
	Zstd
	Gzip
)

// FormatOf returns the format and compression that correspond to the file name.
// The format is given by the .json, .yaml, .yml or .msgpack extension, which can be followed
// by .zst or .gz for compressed files.
func FormatOf(name string) (Format, Compression, error) {
	lower := strings.ToLower(name)
	comp := None
	switch {
	case strings.HasSuffix(lower, ".zst"):
		comp = Zstd
		lower = strings.TrimSuffix(lower, ".zst")
	case strings.HasSuffix(lower, ".gz"):
		comp = Gzip
		lower = strings.TrimSuffix(lower, ".gz")
	}
	switch {
	case strings.HasSuffix(lower, ".json"):
		return JSON, comp, nil
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return YAML, comp, nil
	case strings.HasSuffix(lower, ".msgpack"):
		return MsgPack, comp, nil
	}
	return JSON, comp, Error{message: "unknown document format", filename: name, deco: []string{"FormatOf"}}
}

// Marshal serializes doc. The same document always gives the same bytes.
func Marshal(doc *Document, f Format) ([]byte, error) {
	var out []byte
	var err error
	switch f {
	case YAML:
		out, err = yaml.Marshal(doc)
	case MsgPack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetSortMapKeys(true)
		err = enc.Encode(doc)
		out = buf.Bytes()
	default:
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, Error{message: err.Error(), deco: []string{f.String() + ".Marshal", "Marshal"}}
	}
	return out, nil
}

// Unmarshal reads a document from data. It doesn't check the schema, Decode does.
func Unmarshal(data []byte, f Format) (*Document, error) {
	doc := new(Document)
	var err error
	switch f {
	case YAML:
		err = yaml.Unmarshal(data, doc)
	case MsgPack:
		err = msgpack.Unmarshal(data, doc)
	default:
		err = json.Unmarshal(data, doc)
	}
	if err != nil {
		return nil, Error{message: err.Error(), deco: []string{f.String() + ".Unmarshal", "Unmarshal"}}
	}
	return doc, nil
}

// Write serializes doc to w, compressing it if comp is not None.
func Write(w io.Writer, doc *Document, f Format, comp Compression) error {
	data, err := Marshal(doc, f)
	if err != nil {
		return errDecorate(err, "Write")
	}
	var cw io.WriteCloser
	switch comp {
	case Zstd:
		if cw, err = zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression)); err != nil {
			return Error{message: err.Error(), deco: []string{"zstd.NewWriter", "Write"}}
		}
	case Gzip:
		if cw, err = gzip.NewWriterLevel(w, gzip.BestCompression); err != nil {
			return Error{message: err.Error(), deco: []string{"gzip.NewWriterLevel", "Write"}}
		}
	default:
		if _, err = w.Write(data); err != nil {
			return Error{message: err.Error(), deco: []string{"Write"}}
		}
		return nil
	}
	if _, err = cw.Write(data); err != nil {
		cw.Close()
		return Error{message: err.Error(), deco: []string{"Write"}}
	}
	if err = cw.Close(); err != nil {
		return Error{message: err.Error(), deco: []string{"Close", "Write"}}
	}
	return nil
}

// Read reads a document from r, which is decompressed if comp is not None.
func Read(r io.Reader, f Format, comp Compression) (*Document, error) {
	var data []byte
	var err error
	switch comp {
	case Zstd:
		var zr *zstd.Decoder
		if zr, err = zstd.NewReader(r); err != nil {
			return nil, Error{message: err.Error(), deco: []string{"zstd.NewReader", "Read"}}
		}
		defer zr.Close()
		data, err = io.ReadAll(zr)
	case Gzip:
		var gr *gzip.Reader
		if gr, err = gzip.NewReader(r); err != nil {
			return nil, Error{message: err.Error(), deco: []string{"gzip.NewReader", "Read"}}
		}
		defer gr.Close()
		data, err = io.ReadAll(gr)
	default:
		data, err = io.ReadAll(r)
	}
	if err != nil {
		return nil, Error{message: err.Error(), deco: []string{"io.ReadAll", "Read"}}
	}
	doc, err := Unmarshal(data, f)
	if err != nil {
		return nil, errDecorate(err, "Read")
	}
	return doc, nil
}

// WriteFile writes doc to the file name, in the format and with the compression
// given by the name. See FormatOf.
func WriteFile(name string, doc *Document) error {
	f, comp, err := FormatOf(name)
	if err != nil {
		return errDecorate(err, "WriteFile")
	}
	var buf bytes.Buffer
	if err := Write(&buf, doc, f, comp); err != nil {
		return errDecorate(err, "WriteFile")
	}
	if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
		return Error{message: err.Error(), filename: name, deco: []string{"os.WriteFile", "WriteFile"}}
	}
	return nil
}

// ReadFile reads a document from the file name. See FormatOf.
func ReadFile(name string) (*Document, error) {
	f, comp, err := FormatOf(name)
	if err != nil {
		return nil, errDecorate(err, "ReadFile")
	}
	in, err := os.Open(name)
	if err != nil {
		return nil, Error{message: err.Error(), filename: name, deco: []string{"os.Open", "ReadFile"}}
	}
	defer in.Close()
	doc, err := Read(in, f, comp)
	if err != nil {
		return nil, errDecorate(err, "ReadFile: "+name)
	}
	return doc, nil
}
