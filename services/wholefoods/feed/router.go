package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"wholefoods-scraper/services/wholefoods"
)

var ErrUnknownRecord = errors.New("unknown record type")

type RouterOptions struct {
	Stores   *JSONFeed
	Products *JSONFeed
	// Sink may be nil
	Sink *DBSink
}

// Router is the crawl pipeline, it hands each record to the feed of its type
// and to the database sink.
type Router struct {
	opts RouterOptions
}

func NewRouter(opts RouterOptions) *Router {
	return &Router{opts: opts}
}

// OpenRouter creates the store and product feeds inside `dir`.
func OpenRouter(dir string, sink *DBSink) (*Router, error) {
	stores, err := NewJSONFeed(filepath.Join(dir, StoreFeedName))
	if err != nil {
		return nil, err
	}
	products, err := NewJSONFeed(filepath.Join(dir, ProductFeedName))
	if err != nil {
		stores.Close()
		return nil, err
	}
	return NewRouter(RouterOptions{Stores: stores, Products: products, Sink: sink}), nil
}

func (r *Router) Process(ctx context.Context, item any) error {
	switch record := item.(type) {
	case wholefoods.StoreRecord:
		if r.opts.Stores != nil {
			err := r.opts.Stores.Write(record)
			if err != nil {
				return err
			}
		}
		if r.opts.Sink != nil {
			return r.opts.Sink.WriteStore(ctx, record)
		}
		return nil
	case wholefoods.ProductRecord:
		if r.opts.Products != nil {
			err := r.opts.Products.Write(record)
			if err != nil {
				return err
			}
		}
		if r.opts.Sink != nil {
			return r.opts.Sink.WriteProduct(ctx, record)
		}
		return nil
	}
	return fmt.Errorf("%w: %T", ErrUnknownRecord, item)
}

func (r *Router) Counts() (stores int, products int) {
	if r.opts.Stores != nil {
		stores = r.opts.Stores.Count()
	}
	if r.opts.Products != nil {
		products = r.opts.Products.Count()
	}
	return stores, products
}

func (r *Router) Close() error {
	var errs []error
	for _, f := range []*JSONFeed{r.opts.Stores, r.opts.Products} {
		if f == nil {
			continue
		}
		err := f.Close()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		slog.Info("feed written", "path", f.Path(), "records", f.Count())
	}
	return errors.Join(errs...)
}
