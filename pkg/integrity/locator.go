package integrity

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"errors"
	"fmt"
	"io"
	"os"

	qerrors "github.com/pzverkov/quantum-go-fips/internal/errors"
)

// Region is a located code region.
type Region struct {
	Name string // Section name, e.g. ".text"
	Data []byte
}

// CodeRegionLocator finds the bytes the integrity checksum covers.
type CodeRegionLocator interface {
	Locate() (Region, error)
}

// Format is an executable file format.
type Format string

// Supported executable formats.
const (
	FormatELF   Format = "elf"
	FormatMachO Format = "macho"
	FormatPE    Format = "pe"
)

// StaticLocator serves a fixed region.
type StaticLocator struct {
	Name string
	Data []byte
}

// Locate returns the fixed region.
func (s StaticLocator) Locate() (Region, error) {
	name := s.Name
	if name == "" {
		name = "static"
	}
	return Region{Name: name, Data: s.Data}, nil
}

// ExecutableLocator locates the code section of the running executable, in
// the native format of the platform. It fails with errors.ErrPlatform on
// platforms without a known format.
type ExecutableLocator struct{}

// Locate reads the text section of os.Executable().
func (ExecutableLocator) Locate() (Region, error) {
	if nativeFormat == "" {
		return Region{}, qerrors.ErrPlatform
	}
	path, err := os.Executable()
	if err != nil {
		return Region{}, fmt.Errorf("%w: %v", qerrors.ErrPlatform, err)
	}
	return FileLocator{Path: path, Format: nativeFormat}.Locate()
}

// FileLocator locates the code section of an executable on disk. An empty
// Format detects the format from the file contents.
type FileLocator struct {
	Path   string
	Format Format
}

// Locate reads the text section of the file.
func (f FileLocator) Locate() (Region, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return Region{}, err
	}
	defer file.Close()

	format := f.Format
	if format == "" {
		if format, err = detectFormat(file); err != nil {
			return Region{}, err
		}
	}
	return textSection(file, format)
}

var (
	elfMagic = []byte{0x7f, 'E', 'L', 'F'}
	peMagic  = []byte{'M', 'Z'}
)

func detectFormat(r io.ReaderAt) (Format, error) {
	var hdr [4]byte
	if _, err := r.ReadAt(hdr[:], 0); err != nil {
		return "", fmt.Errorf("integrity: read header: %w", err)
	}
	switch {
	case bytes.Equal(hdr[:], elfMagic):
		return FormatELF, nil
	case bytes.Equal(hdr[:2], peMagic):
		return FormatPE, nil
	}
	if m, err := macho.NewFile(r); err == nil {
		m.Close()
		return FormatMachO, nil
	}
	return "", errors.New("integrity: unrecognized executable format")
}

func textSection(r io.ReaderAt, format Format) (Region, error) {
	switch format {
	case FormatELF:
		f, err := elf.NewFile(r)
		if err != nil {
			return Region{}, err
		}
		defer f.Close()
		s := f.Section(".text")
		if s == nil {
			return Region{}, errors.New("integrity: ELF file has no .text section")
		}
		data, err := s.Data()
		if err != nil {
			return Region{}, err
		}
		return Region{Name: ".text", Data: data}, nil

	case FormatMachO:
		f, err := macho.NewFile(r)
		if err != nil {
			return Region{}, err
		}
		defer f.Close()
		s := f.Section("__text")
		if s == nil || s.Seg != "__TEXT" {
			return Region{}, errors.New("integrity: Mach-O file has no __TEXT,__text section")
		}
		data, err := s.Data()
		if err != nil {
			return Region{}, err
		}
		return Region{Name: "__TEXT,__text", Data: data}, nil

	case FormatPE:
		f, err := pe.NewFile(r)
		if err != nil {
			return Region{}, err
		}
		defer f.Close()
		s := f.Section(".text")
		if s == nil {
			return Region{}, errors.New("integrity: PE file has no .text section")
		}
		data, err := s.Data()
		if err != nil {
			return Region{}, err
		}
		// Data is padded to the file alignment; hash the virtual size only.
		if int(s.VirtualSize) < len(data) {
			data = data[:s.VirtualSize]
		}
		return Region{Name: ".text", Data: data}, nil
	}
	return Region{}, fmt.Errorf("integrity: unknown format %q", format)
}
