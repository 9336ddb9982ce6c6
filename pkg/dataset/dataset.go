// Package dataset provides the sample provider for GBM brain-tumor MRI
// training data: given a base table of labeled patients it expands the
// index with synthetic augmentation variants, optionally standardizes a
// paired radiomic feature table, and serves (tensor, label) pairs by
// positional index.
//
// The provider is constructed once and is read-mostly afterward; the
// only mutable state is the augmentation generators, which advance on
// every augmented access. Multi-worker loading harnesses must give each
// worker its own generators via WorkerCopy.
package dataset

import (
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"gbmset/internal/models"
	"gbmset/pkg/augment"
	"gbmset/pkg/radiomics"
	"gbmset/pkg/volume"
)

// DefaultModality is substituted for the modality placeholder "mod" when
// retrieving radiomic features. Image loading is unaffected.
const DefaultModality = "FLAIR"

// ModalityPlaceholder marks a modality list entry that does not name a
// concrete acquisition sequence.
const ModalityPlaceholder = "mod"

// Params configures a Provider. The zero value of an optional field
// selects its default; see New.
type Params struct {
	// DataDir holds one .npy file per (patient, modality), named
	// <patient>_<modality>.npy.
	DataDir string

	// CSVDir holds the radiomic feature tables, one CSV per modality.
	// Only consulted when Encode is set.
	CSVDir string

	// Modalities lists the acquisition sequences to load. More than one
	// modality switches the provider to modality-stacked channels.
	// Default: [FLAIR].
	Modalities []string

	// Dims are the spatial dimensions of the stored sub-volumes.
	// Default: 70×86×86.
	Dims [3]int

	// Channels selects the tumor sub-region channels when a single
	// modality is configured: 1 (whole tumor only), 3 (sub-regions),
	// 4 (sub-regions plus whole tumor) or 5 (all slices). Default: 3.
	Channels int

	// Augment enables synthetic index expansion.
	Augment bool

	// AugmentKinds lists the expansion transforms, in table order.
	// Default: noise, flip, rotate, deform.
	AugmentKinds []models.Augmentation

	// Encode enables spatial encoding of standardized radiomic features
	// into an appended zero plane of the sample tensor.
	Encode bool

	// Sectionate reshapes assembled arrays to Dims, with a trailing
	// channel axis when the layout has more than one channel.
	Sectionate bool

	// Seed seeds the augmentation generators. Default: 42.
	Seed uint64

	// Transform, when set, is applied to every assembled tensor.
	Transform func(*volume.Volume) (*volume.Volume, error)

	// TargetTransform, when set, is applied to every label.
	TargetTransform func(float64) (float64, error)

	// Logger receives construction and access diagnostics.
	// Default: zap.NewNop().
	Logger *zap.Logger
}

// Provider serves (tensor, label) pairs by positional index over the
// expanded label table.
type Provider struct {
	params   Params
	layout   models.ChannelLayout
	entries  []models.LabelEntry
	features *radiomics.Table
	aug      *augment.Augmentor
	log      *zap.Logger
}

// New builds a Provider from a base label table of real (non-virtual)
// samples. Construction performs the one-time work: index expansion and,
// when feature encoding is requested, radiomic table retrieval,
// restriction to the base patients and standardization. The base table
// order is preserved and fixes positional access for the lifetime of
// the provider.
func New(params Params, base []models.LabelEntry) (*Provider, error) {
	if len(params.Modalities) == 0 {
		params.Modalities = []string{DefaultModality}
	}
	if params.Dims == [3]int{} {
		params.Dims = [3]int{70, 86, 86}
	}
	if params.Channels == 0 {
		params.Channels = 3
	}
	if len(params.AugmentKinds) == 0 {
		params.AugmentKinds = []models.Augmentation{
			models.AugNoise, models.AugFlip, models.AugRotate, models.AugDeform,
		}
	}
	if params.Seed == 0 {
		params.Seed = 42
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}

	if len(base) == 0 {
		return nil, errors.New("base label table is empty")
	}
	for i, e := range base {
		if e.Ref.Patient == "" {
			return nil, errors.Newf("base label table entry %d has an empty patient identifier", i)
		}
		if e.Ref.IsVirtual() {
			return nil, errors.Newf("base label table entry %d (%s) is virtual; only real samples may seed the table", i, e.Ref)
		}
	}
	seen := make(map[models.Augmentation]bool, len(params.AugmentKinds))
	for _, k := range params.AugmentKinds {
		if k == models.AugNone {
			return nil, errors.New("augmentation kind list may not contain the empty kind")
		}
		if seen[k] {
			return nil, errors.Newf("duplicate augmentation kind %q", k)
		}
		seen[k] = true
	}

	p := &Provider{
		params: params,
		layout: models.LayoutFor(params.Channels, len(params.Modalities)),
		log:    params.Logger,
		aug:    augment.New(params.Seed),
	}

	p.entries = append([]models.LabelEntry(nil), base...)
	if params.Augment {
		p.entries = expandIndex(p.entries, params.AugmentKinds)
	}

	if params.Encode {
		if ch := p.layout.Channels(len(params.Modalities)); ch < 3 {
			return nil, errors.Newf("feature encoding needs at least 3 leading channels, layout provides %d", ch)
		}
		table, err := p.loadFeatures(base)
		if err != nil {
			return nil, err
		}
		p.features = table
	}

	p.log.Info("sample provider ready",
		zap.Int("base_samples", len(base)),
		zap.Int("expanded_samples", len(p.entries)),
		zap.Strings("modalities", params.Modalities),
		zap.Int("channels", p.layout.Channels(len(params.Modalities))),
		zap.Bool("augment", params.Augment),
		zap.Bool("encode", params.Encode),
	)
	return p, nil
}

// loadFeatures retrieves the radiomic feature table for the
// representative modality, restricts it to the base patients and
// standardizes it over that population.
func (p *Provider) loadFeatures(base []models.LabelEntry) (*radiomics.Table, error) {
	modality := p.params.Modalities[0]
	if modality == ModalityPlaceholder {
		modality = DefaultModality
	}

	table, err := radiomics.Retrieve(p.params.CSVDir, modality)
	if err != nil {
		return nil, errors.Wrap(err, "failed to retrieve radiomic features")
	}

	patients := make([]string, len(base))
	for i, e := range base {
		patients[i] = e.Ref.Patient
	}
	restricted, err := table.Restrict(patients)
	if err != nil {
		return nil, errors.Wrap(err, "failed to restrict radiomic features to the active population")
	}
	return restricted.Standardize(), nil
}

// Len returns the length of the expanded label table.
func (p *Provider) Len() int {
	return len(p.entries)
}

// Refs returns a copy of the expanded sample references in table order.
func (p *Provider) Refs() []models.SampleRef {
	refs := make([]models.SampleRef, len(p.entries))
	for i, e := range p.entries {
		refs[i] = e.Ref
	}
	return refs
}

// Label returns the label at a positional index without loading the
// sample tensor.
func (p *Provider) Label(idx int) (float64, error) {
	if idx < 0 || idx >= len(p.entries) {
		return 0, errors.Newf("index %d out of range [0, %d)", idx, len(p.entries))
	}
	return p.entries[idx].Label, nil
}

// At loads, assembles and transforms the sample at a positional index
// of the expanded label table, returning the tensor and its label.
// Failures from collaborators (missing files, malformed feature rows,
// shape mismatches) propagate; no retries are attempted.
func (p *Provider) At(idx int) (*volume.Volume, float64, error) {
	if idx < 0 || idx >= len(p.entries) {
		return nil, 0, errors.Newf("index %d out of range [0, %d)", idx, len(p.entries))
	}
	entry := p.entries[idx]
	start := time.Now()

	var (
		vol *volume.Volume
		err error
	)
	if len(p.params.Modalities) < 2 {
		vol, err = p.loadSample(entry.Ref)
	} else {
		vol, err = p.loadModalityStack(entry.Ref)
	}
	if err != nil {
		return nil, 0, errors.Wrapf(err, "failed to assemble sample %s", entry.Ref)
	}

	if p.params.Encode {
		vol, err = p.encode(vol, entry.Ref.Patient)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "failed to encode radiomic features into sample %s", entry.Ref)
		}
	}

	label := entry.Label
	if p.params.Transform != nil {
		vol, err = p.params.Transform(vol)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "transform failed for sample %s", entry.Ref)
		}
	}
	if p.params.TargetTransform != nil {
		label, err = p.params.TargetTransform(label)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "target transform failed for sample %s", entry.Ref)
		}
	}

	if !p.layout.HasChannelAxis() {
		vol = vol.ExpandDims0()
	}

	p.log.Debug("served sample",
		zap.Int("index", idx),
		zap.Stringer("ref", entry.Ref),
		zap.Ints("shape", vol.Shape),
		zap.Duration("elapsed", time.Since(start)),
	)
	return vol, label, nil
}

// WorkerCopy returns a provider sharing this provider's immutable label
// table, feature table and configuration, but owning fresh augmentation
// generators seeded Seed+workerID. Each parallel loading worker should
// hold its own copy; the generators themselves are not synchronized.
func (p *Provider) WorkerCopy(workerID int) *Provider {
	cp := *p
	cp.aug = augment.New(p.params.Seed + uint64(workerID))
	return &cp
}

// arrayPath resolves the on-disk file of one (patient, modality) pair.
// Virtual references resolve through their patient, so augmented
// samples always re-read the real volume.
func (p *Provider) arrayPath(ref models.SampleRef, modality string) string {
	return filepath.Join(p.params.DataDir, ref.Patient+"_"+modality+".npy")
}

// kindConfigured reports whether an augmentation kind is among the
// configured expansion transforms.
func (p *Provider) kindConfigured(kind models.Augmentation) bool {
	for _, k := range p.params.AugmentKinds {
		if k == kind {
			return true
		}
	}
	return false
}
