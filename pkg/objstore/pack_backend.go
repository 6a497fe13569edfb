package objstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/gitstore/pkg/digest"
)

// PackPriority is the default priority of the packed backend: it is
// probed after the loose backend.
const PackPriority = 0

// PackBackend serves reads from pack/index pairs under <root>/pack. It
// never accepts writes directly; new packs are produced by Consolidate,
// which folds existing loose objects into a fresh pack.
type PackBackend struct {
	root string
	odb  *ODB
}

// OpenPackBackend binds a pack backend to objectsDir. It always succeeds;
// a missing pack/ directory simply means no packs are currently indexed.
func OpenPackBackend(objectsDir string) (*PackBackend, error) {
	return &PackBackend{root: objectsDir}, nil
}

func (p *PackBackend) Priority() int         { return PackPriority }
func (p *PackBackend) boundODB() *ODB        { return p.odb }
func (p *PackBackend) bindODB(db *ODB)       { p.odb = db }
func (p *PackBackend) Writable() bool        { return false }
func (p *PackBackend) SupportsHeader() bool  { return false }
func (p *PackBackend) Close() error          { return nil }

func (p *PackBackend) packDir() string {
	return filepath.Join(p.root, "pack")
}

func (p *PackBackend) Exists(id digest.Digest) bool {
	_, _, err := p.find(id)
	return err == nil
}

func (p *PackBackend) Read(id digest.Digest) (*RawObject, error) {
	entry, _, err := p.find(id)
	if err != nil {
		return nil, fmt.Errorf("objstore: pack read %s: %w", id, ErrNotFound)
	}
	return decodeIndexedPackEntry(id, entry)
}

// ReadHeader is unsupported; the ODB degrades to Read for this backend.
func (p *PackBackend) ReadHeader(id digest.Digest) (*RawObject, error) {
	return nil, fmt.Errorf("objstore: pack backend cannot read headers: %w", ErrNotFound)
}

// Write is never used directly; PackBackend advertises Writable() == false.
func (p *PackBackend) Write(obj *RawObject) (digest.Digest, error) {
	return digest.Digest{}, fmt.Errorf("objstore: pack backend does not accept direct writes")
}

func (p *PackBackend) find(id digest.Digest) (PackEntry, string, error) {
	idxPaths, err := p.listIndexPaths()
	if err != nil {
		return PackEntry{}, "", err
	}
	for _, idxPath := range idxPaths {
		idxData, err := os.ReadFile(idxPath)
		if err != nil {
			continue
		}
		idx, err := ReadPackIndex(idxData)
		if err != nil {
			continue
		}
		indexEntry, ok := idx.Find(id)
		if !ok {
			continue
		}

		packPath := packPathForIndex(idxPath)
		packData, err := os.ReadFile(packPath)
		if err != nil {
			return PackEntry{}, "", err
		}
		pf, err := ReadPack(packData)
		if err != nil {
			return PackEntry{}, "", err
		}
		if pf.Checksum != idx.PackChecksum {
			return PackEntry{}, "", fmt.Errorf("checksum mismatch between %s and its pack", filepath.Base(idxPath))
		}
		for _, e := range pf.Entries {
			if e.Offset == indexEntry.Offset {
				return e, idxPath, nil
			}
		}
		return PackEntry{}, "", fmt.Errorf("pack %s missing entry at offset %d", filepath.Base(packPath), indexEntry.Offset)
	}
	return PackEntry{}, "", ErrNotFound
}

func (p *PackBackend) listIndexPaths() ([]string, error) {
	entries, err := os.ReadDir(p.packDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read pack dir: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".idx") {
			continue
		}
		out = append(out, filepath.Join(p.packDir(), e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func packPathForIndex(idxPath string) string {
	return strings.TrimSuffix(idxPath, ".idx") + ".pack"
}

// ConsolidateSummary reports the outcome of Consolidate.
type ConsolidateSummary struct {
	PackedObjects int
	PackFile      string
	IndexFile     string
}

// Consolidate folds loose objects not already covered by an existing
// pack index into a fresh pack/index pair. It performs no reachability
// analysis and deletes nothing: loose objects remain on disk exactly as
// before, so this is a compaction step, not a garbage collector.
func (p *PackBackend) Consolidate(loose *LooseBackend) (*ConsolidateSummary, error) {
	looseIDs, err := loose.listAll()
	if err != nil {
		return nil, err
	}

	packed, err := p.packedDigestSet()
	if err != nil {
		return nil, err
	}

	toPack := make([]digest.Digest, 0, len(looseIDs))
	for _, id := range looseIDs {
		if _, ok := packed[id]; !ok {
			toPack = append(toPack, id)
		}
	}
	if len(toPack) == 0 {
		return &ConsolidateSummary{}, nil
	}

	packDir := p.packDir()
	if err := os.MkdirAll(packDir, 0o755); err != nil {
		return nil, fmt.Errorf("consolidate: mkdir pack dir: %w", err)
	}

	packTmp, err := os.CreateTemp(packDir, ".tmp-pack-*.pack")
	if err != nil {
		return nil, fmt.Errorf("consolidate: create pack temp file: %w", err)
	}
	packTmpPath := packTmp.Name()
	removed := false
	defer func() {
		if !removed {
			os.Remove(packTmpPath)
		}
	}()

	pw, err := NewPackWriter(packTmp, uint32(len(toPack)))
	if err != nil {
		packTmp.Close()
		return nil, fmt.Errorf("consolidate: create pack writer: %w", err)
	}

	indexEntries := make([]PackIndexEntry, 0, len(toPack))
	for _, id := range toPack {
		obj, err := loose.Read(id)
		if err != nil {
			packTmp.Close()
			return nil, fmt.Errorf("consolidate: read loose object %s: %w", id, err)
		}
		offset := pw.CurrentOffset()
		if err := pw.WriteEntry(obj.Type, obj.Bytes); err != nil {
			packTmp.Close()
			return nil, fmt.Errorf("consolidate: write pack entry %s: %w", id, err)
		}
		indexEntries = append(indexEntries, PackIndexEntry{Digest: id, Offset: offset})
	}

	checksum, err := pw.Finish()
	if err != nil {
		packTmp.Close()
		return nil, fmt.Errorf("consolidate: finalize pack: %w", err)
	}
	if err := packTmp.Close(); err != nil {
		return nil, fmt.Errorf("consolidate: close pack temp file: %w", err)
	}

	base := "pack-" + checksum.String()
	packPath := filepath.Join(packDir, base+".pack")
	idxPath := filepath.Join(packDir, base+".idx")
	if err := os.Rename(packTmpPath, packPath); err != nil {
		return nil, fmt.Errorf("consolidate: rename pack file: %w", err)
	}
	removed = true

	idxTmp, err := os.CreateTemp(packDir, ".tmp-pack-*.idx")
	if err != nil {
		os.Remove(packPath)
		return nil, fmt.Errorf("consolidate: create index temp file: %w", err)
	}
	idxTmpPath := idxTmp.Name()
	idxRemoved := false
	defer func() {
		if !idxRemoved {
			os.Remove(idxTmpPath)
		}
	}()

	if _, err := WritePackIndex(idxTmp, indexEntries, checksum); err != nil {
		idxTmp.Close()
		os.Remove(packPath)
		return nil, fmt.Errorf("consolidate: write pack index: %w", err)
	}
	if err := idxTmp.Close(); err != nil {
		os.Remove(packPath)
		return nil, fmt.Errorf("consolidate: close index temp file: %w", err)
	}
	if err := os.Rename(idxTmpPath, idxPath); err != nil {
		os.Remove(packPath)
		return nil, fmt.Errorf("consolidate: rename index file: %w", err)
	}
	idxRemoved = true

	return &ConsolidateSummary{
		PackedObjects: len(toPack),
		PackFile:      filepath.Base(packPath),
		IndexFile:     filepath.Base(idxPath),
	}, nil
}

func (p *PackBackend) packedDigestSet() (map[digest.Digest]struct{}, error) {
	idxPaths, err := p.listIndexPaths()
	if err != nil {
		return nil, err
	}
	out := make(map[digest.Digest]struct{})
	for _, idxPath := range idxPaths {
		idxData, err := os.ReadFile(idxPath)
		if err != nil {
			return nil, fmt.Errorf("read pack index %s: %w", filepath.Base(idxPath), err)
		}
		idx, err := ReadPackIndex(idxData)
		if err != nil {
			return nil, fmt.Errorf("parse pack index %s: %w", filepath.Base(idxPath), err)
		}
		for _, e := range idx.Entries() {
			out[e.Digest] = struct{}{}
		}
	}
	return out, nil
}
