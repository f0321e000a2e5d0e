// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package patch

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"os"
)

// ErrSectionNotFound means the requested ELF section does not exist in
// the target. The build that produced the artifact did not reserve the
// region, so there is nothing to patch.
var ErrSectionNotFound = errors.New("section not found")

// ELFSection patches the named section of the ELF artifact at path in
// place. This is the workflow for non-Go artifacts whose build
// reserves the region as a dedicated section. The section must exist,
// occupy file space (not SHT_NOBITS), and be exactly len(payload)
// bytes; on any error the artifact is unchanged.
func ELFSection(path, name string, payload []byte) error {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("opening %s for patching: %w", path, err)
	}
	defer file.Close()

	if err := lockExclusive(file); err != nil {
		return err
	}

	elfFile, err := elf.NewFile(file)
	if err != nil {
		return fmt.Errorf("parsing %s as ELF: %w", path, err)
	}
	sec := elfFile.Section(name)
	if sec == nil {
		return fmt.Errorf("%s has no section %q: %w", path, name, ErrSectionNotFound)
	}
	if sec.Type == elf.SHT_NOBITS {
		return fmt.Errorf("section %q of %s occupies no file space (SHT_NOBITS)", name, path)
	}
	if sec.Size != uint64(len(payload)) {
		return fmt.Errorf("patching section %q of %s: payload is %d bytes, section is %d: %w",
			name, path, len(payload), sec.Size, ErrSizeMismatch)
	}

	if _, err := file.WriteAt(payload, int64(sec.Offset)); err != nil {
		return fmt.Errorf("writing payload to %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// ReadELFSection returns the contents of the named section of the ELF
// artifact at path. Compressed artifacts are decompressed in memory
// first, same as ReadSection.
func ReadELFSection(path, name string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if c := detectCompression(data); c != compressionNone {
		if data, err = decompress(c, data); err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
	}

	elfFile, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s as ELF: %w", path, err)
	}
	sec := elfFile.Section(name)
	if sec == nil {
		return nil, fmt.Errorf("%s has no section %q: %w", path, name, ErrSectionNotFound)
	}
	if sec.Type == elf.SHT_NOBITS {
		return nil, fmt.Errorf("section %q of %s occupies no file space (SHT_NOBITS)", name, path)
	}
	payload, err := sec.Data()
	if err != nil {
		return nil, fmt.Errorf("reading section %q of %s: %w", name, path, err)
	}
	return payload, nil
}
