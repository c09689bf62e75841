package validator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/ShayCichocki/speclint/internal/xcodebuild"
)

// BuiltProductsDir is the directory build products are copied into.
const BuiltProductsDir = "BuiltPods"

// copyArtifacts copies the products of a successful build cell to
// <ArtifactsDir>/BuiltPods/<Configuration>-<sdk>, replacing an older copy.
func (b *Builder) copyArtifacts(inv xcodebuild.Invocation) error {
	src := xcodebuild.ProductsDir(inv.DerivedData(), inv.Configuration, inv.Platform.Name, inv.Simulator)
	base := b.cfg.ArtifactsDir
	if base == "" {
		base = "."
	}
	dst := filepath.Join(base, BuiltProductsDir, xcodebuild.PlatformDir(inv.Configuration, inv.Platform.Name, inv.Simulator))

	if ok, err := afero.DirExists(b.fs, src); err != nil || !ok {
		return fmt.Errorf("no build products at %s", src)
	}
	if err := b.fs.RemoveAll(dst); err != nil {
		return fmt.Errorf("remove previous products: %w", err)
	}
	if err := copyTree(b.fs, src, dst); err != nil {
		return err
	}
	b.logger.Debug().Str("from", src).Str("to", dst).Msg("copied build products")
	return nil
}

func copyTree(fs afero.Fs, src, dst string) error {
	return afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.Mode()&os.ModeSymlink != 0 {
			return copyLink(fs, path, target)
		}
		if info.IsDir() {
			return fs.MkdirAll(target, info.Mode().Perm()|0700)
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := afero.WriteFile(fs, target, data, info.Mode().Perm()); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		return nil
	})
}

// copyLink recreates the symlink at path as target with the same link text.
// Framework bundles rely on relative links such as Versions/Current. Links
// are dropped on filesystems that cannot represent them.
func copyLink(fs afero.Fs, path, target string) error {
	reader, ok := fs.(afero.LinkReader)
	if !ok {
		return nil
	}
	linker, ok := fs.(afero.Linker)
	if !ok {
		return nil
	}
	dest, err := reader.ReadlinkIfPossible(path)
	if err != nil {
		return fmt.Errorf("read link %s: %w", path, err)
	}
	if err := fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if err := linker.SymlinkIfPossible(dest, target); err != nil {
		return fmt.Errorf("link %s: %w", target, err)
	}
	return nil
}
