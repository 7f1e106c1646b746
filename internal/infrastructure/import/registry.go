package poimport

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pohub/backend/internal/domain/purchaseorder"
)

// Detection methods
const (
	MethodFilename  = "filename"
	MethodStructure = "structure"
	MethodExplicit  = "explicit"
)

// Detection is the outcome of Registry.Detect
type Detection struct {
	Vendor purchaseorder.Vendor
	Result *Result
	Method string
}

// Registry holds vendor parsers in registration order
type Registry struct {
	parsers  []Parser
	byVendor map[purchaseorder.Vendor]Parser
}

// NewRegistry creates a registry. Later parsers for the same vendor are ignored.
func NewRegistry(parsers ...Parser) *Registry {
	r := &Registry{byVendor: make(map[purchaseorder.Vendor]Parser, len(parsers))}
	for _, p := range parsers {
		if _, dup := r.byVendor[p.Vendor()]; dup {
			continue
		}
		r.parsers = append(r.parsers, p)
		r.byVendor[p.Vendor()] = p
	}
	return r
}

// DefaultRegistry registers every supported vendor
func DefaultRegistry(opts ...Option) *Registry {
	return NewRegistry(
		NewFlipkartParser(opts...),
		NewZeptoParser(opts...),
		NewCityMallParser(opts...),
		NewBlinkitParser(opts...),
		NewSwiggyParser(opts...),
		NewBigBasketParser(opts...),
		NewZomatoParser(opts...),
		NewDealshareParser(opts...),
		NewAmazonParser(opts...),
		NewJioMartParser(opts...),
	)
}

// Vendors returns the registered vendors in order
func (r *Registry) Vendors() []purchaseorder.Vendor {
	out := make([]purchaseorder.Vendor, 0, len(r.parsers))
	for _, p := range r.parsers {
		out = append(out, p.Vendor())
	}
	return out
}

// Parser returns the parser registered for v
func (r *Registry) Parser(v purchaseorder.Vendor) (Parser, bool) {
	p, ok := r.byVendor[v]
	return p, ok
}

// ParseAs runs the parser of one named vendor
func (r *Registry) ParseAs(v purchaseorder.Vendor, data []byte, uploadedBy string) (*Detection, error) {
	p, ok := r.byVendor[v]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVendor, v)
	}
	res, err := p.Parse(data, uploadedBy)
	if err != nil {
		return nil, err
	}
	return &Detection{Vendor: v, Result: res, Method: MethodExplicit}, nil
}

// Detect picks a parser for an upload. A vendor keyword in the file name
// wins; otherwise parsers are tried in order of structural fit and the first
// one that succeeds is used.
func (r *Registry) Detect(filename string, data []byte, uploadedBy string) (*Detection, error) {
	g, format, err := DecodeGrid(data)
	if err != nil {
		return nil, err
	}

	if p := r.byFilename(filename); p != nil {
		res, firstErr := p.ParseGrid(g, uploadedBy)
		if firstErr == nil {
			res.Format = format
			return &Detection{Vendor: p.Vendor(), Result: res, Method: MethodFilename}, nil
		}
		if d := r.byStructure(g, format, uploadedBy, p.Vendor()); d != nil {
			return d, nil
		}
		return nil, firstErr
	}

	if d := r.byStructure(g, format, uploadedBy, ""); d != nil {
		return d, nil
	}
	return nil, ErrUnrecognizedFormat
}

func (r *Registry) byFilename(filename string) Parser {
	name := strings.ToLower(filepath.Base(filename))
	if name == "" || name == "." {
		return nil
	}
	for _, p := range r.parsers {
		for _, kw := range p.Vendor().Keywords() {
			if strings.Contains(name, kw) {
				return p
			}
		}
	}
	return nil
}

type candidate struct {
	parser Parser
	score  int
}

// rank scores every parser except skip and drops those with no fit.
// Ties keep registration order.
func (r *Registry) rank(g Grid, skip purchaseorder.Vendor) []candidate {
	var out []candidate
	for _, p := range r.parsers {
		if p.Vendor() == skip {
			continue
		}
		if s := p.Score(g); s > 0 {
			out = append(out, candidate{parser: p, score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].score > out[j].score
	})
	return out
}

func (r *Registry) byStructure(g Grid, format Format, uploadedBy string, skip purchaseorder.Vendor) *Detection {
	for _, c := range r.rank(g, skip) {
		res, err := c.parser.ParseGrid(g, uploadedBy)
		if err != nil {
			continue
		}
		res.Format = format
		return &Detection{Vendor: c.parser.Vendor(), Result: res, Method: MethodStructure}
	}
	return nil
}
