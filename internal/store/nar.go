// Package store implements Neve's content-addressed filesystem store:
// NAR serialization for hashing directories, path placement under
// {hash}-{name}, reference scanning, and mark-and-sweep GC rooted at
// generations and user-declared roots.
package store

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"neve/internal/deriv"
)

// narMagic opens every archive.
const narMagic = "nix-archive-1"

// NarWriter serializes a filesystem subtree into a deterministic,
// length-prefixed archive format: every string is
// written as an 8-byte little-endian length followed by the bytes,
// padded to 8-byte alignment, so the same tree always produces the same
// byte stream regardless of the underlying filesystem's own directory
// iteration order.
type NarWriter struct {
	w *bufio.Writer
}

func NewNarWriter(w io.Writer) *NarWriter { return &NarWriter{w: bufio.NewWriter(w)} }

// WritePath serializes the file, directory, or symlink at path.
func (nw *NarWriter) WritePath(path string) error {
	if err := nw.writeString(narMagic); err != nil {
		return err
	}
	if err := nw.writeEntry(path); err != nil {
		return err
	}
	return nw.w.Flush()
}

func (nw *NarWriter) writeEntry(path string) error {
	if err := nw.writeString("("); err != nil {
		return err
	}

	info, err := os.Lstat(path)
	if err != nil {
		return err
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return err
		}
		if err := nw.writeString("type"); err != nil {
			return err
		}
		if err := nw.writeString("symlink"); err != nil {
			return err
		}
		if err := nw.writeString("target"); err != nil {
			return err
		}
		if err := nw.writeString(target); err != nil {
			return err
		}

	case info.IsDir():
		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		if err := nw.writeString("type"); err != nil {
			return err
		}
		if err := nw.writeString("directory"); err != nil {
			return err
		}
		for _, e := range entries {
			if e.Name() == "." || e.Name() == ".." {
				continue
			}
			if err := nw.writeString("entry"); err != nil {
				return err
			}
			if err := nw.writeString("("); err != nil {
				return err
			}
			if err := nw.writeString("name"); err != nil {
				return err
			}
			if err := nw.writeString(e.Name()); err != nil {
				return err
			}
			if err := nw.writeString("node"); err != nil {
				return err
			}
			if err := nw.writeEntry(filepath.Join(path, e.Name())); err != nil {
				return err
			}
			if err := nw.writeString(")"); err != nil {
				return err
			}
		}

	default:
		contents, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := nw.writeString("type"); err != nil {
			return err
		}
		if err := nw.writeString("regular"); err != nil {
			return err
		}
		if info.Mode()&0o111 != 0 {
			if err := nw.writeString("executable"); err != nil {
				return err
			}
			if err := nw.writeString(""); err != nil {
				return err
			}
		}
		if err := nw.writeString("contents"); err != nil {
			return err
		}
		if err := nw.writeBytes(contents); err != nil {
			return err
		}
	}

	return nw.writeString(")")
}

func (nw *NarWriter) writeString(s string) error { return nw.writeBytes([]byte(s)) }

func (nw *NarWriter) writeBytes(data []byte) error {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(data)))
	if _, err := nw.w.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := nw.w.Write(data); err != nil {
		return err
	}
	if pad := (8 - len(data)%8) % 8; pad > 0 {
		if _, err := nw.w.Write(make([]byte, pad)); err != nil {
			return err
		}
	}
	return nil
}

// HashPath builds a NAR archive of path in memory and returns its BLAKE3
// hash, the content-addressing operation add_directory performs before
// placing a tree under the store.
func HashPath(path string) (deriv.Digest, error) {
	var buf bytes.Buffer
	if err := NewNarWriter(&buf).WritePath(path); err != nil {
		return deriv.Digest{}, err
	}
	return deriv.HashBytes(buf.Bytes()), nil
}

// CreateNar returns the raw NAR bytes for path, used for cache transport.
func CreateNar(path string) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewNarWriter(&buf).WritePath(path); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NarReader extracts an archive NewNarWriter produced back onto disk.
type NarReader struct {
	r io.Reader
}

func NewNarReader(r io.Reader) *NarReader { return &NarReader{r: bufio.NewReader(r)} }

// ExtractTo writes the archive's contents at dest.
func (nr *NarReader) ExtractTo(dest string) error {
	magic, err := nr.readString()
	if err != nil {
		return err
	}
	if magic != narMagic {
		return fmt.Errorf("store: invalid NAR magic %q", magic)
	}
	return nr.extractEntry(dest)
}

func (nr *NarReader) extractEntry(dest string) error {
	if err := nr.expect("("); err != nil {
		return err
	}
	if err := nr.expect("type"); err != nil {
		return err
	}
	kind, err := nr.readString()
	if err != nil {
		return err
	}
	switch kind {
	case "regular":
		return nr.extractRegular(dest)
	case "directory":
		return nr.extractDirectory(dest)
	case "symlink":
		return nr.extractSymlink(dest)
	default:
		return fmt.Errorf("store: unknown NAR entry type %q", kind)
	}
}

func (nr *NarReader) extractRegular(dest string) error {
	executable := false
	for {
		tag, err := nr.readString()
		if err != nil {
			return err
		}
		switch tag {
		case "executable":
			if _, err := nr.readString(); err != nil { // empty marker string
				return err
			}
			executable = true
		case "contents":
			contents, err := nr.readBytes()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return err
			}
			mode := os.FileMode(0o644)
			if executable {
				mode = 0o755
			}
			if err := os.WriteFile(dest, contents, mode); err != nil {
				return err
			}
		case ")":
			return nil
		default:
			return fmt.Errorf("store: unexpected tag %q in regular file", tag)
		}
	}
}

func (nr *NarReader) extractDirectory(dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	for {
		tag, err := nr.readString()
		if err != nil {
			return err
		}
		switch tag {
		case "entry":
			if err := nr.expect("("); err != nil {
				return err
			}
			if err := nr.expect("name"); err != nil {
				return err
			}
			name, err := nr.readString()
			if err != nil {
				return err
			}
			if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
				return fmt.Errorf("store: path traversal attempt in NAR entry %q", name)
			}
			if err := nr.expect("node"); err != nil {
				return err
			}
			if err := nr.extractEntry(filepath.Join(dest, name)); err != nil {
				return err
			}
			if err := nr.expect(")"); err != nil {
				return err
			}
		case ")":
			return nil
		default:
			return fmt.Errorf("store: unexpected tag %q in directory", tag)
		}
	}
}

func (nr *NarReader) extractSymlink(dest string) error {
	if err := nr.expect("target"); err != nil {
		return err
	}
	target, err := nr.readString()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	_ = os.Remove(dest)
	if err := os.Symlink(target, dest); err != nil {
		return err
	}
	return nr.expect(")")
}

func (nr *NarReader) readString() (string, error) {
	b, err := nr.readBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (nr *NarReader) readBytes() ([]byte, error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(nr.r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint64(lenBuf[:])
	data := make([]byte, n)
	if _, err := io.ReadFull(nr.r, data); err != nil {
		return nil, err
	}
	if pad := (8 - int(n)%8) % 8; pad > 0 {
		if _, err := io.ReadFull(nr.r, make([]byte, pad)); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (nr *NarReader) expect(want string) error {
	got, err := nr.readString()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("store: expected NAR tag %q, got %q", want, got)
	}
	return nil
}

// ExtractNar extracts raw NAR bytes to dest.
func ExtractNar(data []byte, dest string) error {
	return NewNarReader(bytes.NewReader(data)).ExtractTo(dest)
}
