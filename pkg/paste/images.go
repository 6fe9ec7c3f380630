package paste

import "strconv"

// PendingImage is the deferred handler registered for one IMG element. The
// host calls Loaded or Failed on its own loop once the image is attached and
// its natural size is known.
type PendingImage struct {
	node    *Node
	frag    *Fragment
	class   string
	minSize int
}

// Node returns the IMG element the handler is bound to.
func (p *PendingImage) Node() *Node { return p.node }

// Src returns the image source, or "" when the element has none.
func (p *PendingImage) Src() string {
	src, _ := p.node.GetAttr("src")
	return src
}

// Loaded handles a successful load with the image's natural dimensions.
func (p *PendingImage) Loaded(host Host, naturalWidth, naturalHeight int) {
	p.handle(host, naturalWidth, naturalHeight)
}

// Failed handles a load error. The natural size of a broken image is zero,
// so missing dimensions fall back to the minimum.
func (p *PendingImage) Failed(host Host) {
	p.handle(host, 0, 0)
}

func (p *PendingImage) handle(host Host, width, height int) {
	if !p.frag.Contains(p.node) {
		return
	}

	changed := false
	if p.node.SetAttr("class", p.class) {
		changed = true
	}
	if p.node.SetAttr("tabindex", "-1") {
		changed = true
	}
	if _, ok := p.node.GetAttr("width"); !ok {
		p.node.SetAttr("width", strconv.Itoa(max(width, p.minSize)))
		changed = true
	}
	if _, ok := p.node.GetAttr("height"); !ok {
		p.node.SetAttr("height", strconv.Itoa(max(height, p.minSize)))
		changed = true
	}

	if host == nil {
		return
	}
	if changed {
		host.ContentChanged()
	} else {
		host.HeightChanged()
	}
}

// imagePreparer registers a PendingImage for every IMG in the fragment.
type imagePreparer struct {
	class   string
	minSize int
}

func (imagePreparer) name() string { return "images" }

func (ip imagePreparer) prepare(f *Fragment, stats *Stats) []*PendingImage {
	var pending []*PendingImage
	for _, img := range f.Elements("img") {
		pending = append(pending, &PendingImage{
			node:    img,
			frag:    f,
			class:   ip.class,
			minSize: ip.minSize,
		})
	}
	stats.ImagesPrepared = len(pending)
	return pending
}
