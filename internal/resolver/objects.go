package resolver

import (
	"path"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/stoneharry/WoW-Map-Asset-Parser/internal/assetfs"
	"github.com/stoneharry/WoW-Map-Asset-Parser/pkg/encoding"
	"github.com/stoneharry/WoW-Map-Asset-Parser/pkg/formats"
)

// numberedSubObject matches group files such as Tree_000.wmo. They are
// registered but not parsed: they carry no further file references.
var numberedSubObject = regexp.MustCompile(`_[0-9]{3}\.[^./\\]+$`)

// objectPass parses each object and registers its sub-objects. Sub-objects
// are merged into the object set only after the whole pass.
func (r *Resolver) objectPass(objects []string, withAux bool) {
	var found []storedPath
	for _, rel := range objects {
		found = append(found, r.processObject(r.storeOf(rel), rel)...)
	}

	if withAux && r.auxObjects != nil {
		files, err := r.auxObjects.Walk(formats.ObjectExtensions...)
		if err != nil {
			r.log.Warn("auxiliary object root not readable",
				zap.String("dir", r.opts.AuxObjectRoot), zap.Error(err))
		}
		for _, rel := range files {
			r.register(r.objects, r.auxObjects, rel)
			r.directObjects[objectKey(r.auxObjects, rel)] = struct{}{}
			found = append(found, r.processObject(r.auxObjects, rel)...)
		}
	}

	for _, sub := range found {
		r.register(r.objects, sub.store, sub.rel)
	}
}

// processObject parses one object file and returns the sub-objects found
// beside it. A numbered group file is parsed only when it was referenced
// directly rather than found beside another object.
func (r *Resolver) processObject(store *assetfs.Store, rel string) []storedPath {
	key := objectKey(store, rel)
	if _, ok := r.visitedObjects[key]; ok {
		return nil
	}
	r.visitedObjects[key] = struct{}{}

	located, ok := store.Locate(rel)
	if !ok {
		r.log.Warn("unable to find object file", zap.String("path", abs(store, rel)))
		r.rec.FileMissing(KindObject)
		return nil
	}

	_, direct := r.directObjects[key]
	if direct || !numberedSubObject.MatchString(located) {
		r.parseObject(store, located)
	}
	return r.findSubObjects(store, located)
}

func objectKey(store *assetfs.Store, rel string) string {
	return store.Root() + "|" + encoding.PathKey(rel)
}

// parseObject extracts the models and textures of one object file. Each
// file is parsed at most once.
func (r *Resolver) parseObject(store *assetfs.Store, rel string) {
	key := objectKey(store, rel)
	if _, ok := r.parsedObjects[key]; ok {
		return
	}
	r.parsedObjects[key] = struct{}{}

	refs, err := formats.ExtractWMO(r.fs, store.Abs(rel))
	if err != nil {
		r.log.Warn("failed to parse object file", zap.String("path", abs(store, rel)), zap.Error(err))
		return
	}
	r.rec.FileParsed(KindObject)

	for _, m := range refs.Models {
		r.models.Add(m)
	}
	for _, t := range refs.Textures {
		r.addTexture(t)
	}
	for _, s := range refs.Rejected {
		r.log.Debug("discarding MOTX string that is not a texture",
			zap.String("path", abs(store, rel)), zap.String("value", s))
		r.rec.ReferenceRejected("motx_not_texture")
	}
}

// findSubObjects returns every other file in the object's directory whose
// name contains the object's name without extension, ignoring case. Files
// that are not numbered group files are parsed as objects too.
func (r *Resolver) findSubObjects(store *assetfs.Store, rel string) []storedPath {
	dir, name, stem := encoding.Split(rel)
	if stem == "" {
		return nil
	}
	base := strings.ToUpper(stem)

	files, err := store.Files(dir)
	if err != nil {
		r.log.Warn("unable to list object directory", zap.String("dir", abs(store, dir)), zap.Error(err))
		return nil
	}

	var subs []storedPath
	for _, f := range files {
		upper := strings.ToUpper(f)
		if upper == strings.ToUpper(name) || !strings.Contains(upper, base) {
			continue
		}

		sub := path.Join(dir, f)
		subs = append(subs, storedPath{store: store, rel: sub})
		if !numberedSubObject.MatchString(f) {
			r.parseObject(store, sub)
		}
	}
	return subs
}
