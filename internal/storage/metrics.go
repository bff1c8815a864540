package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer captures telemetry for storage operations.
type Observer interface {
	RecordUpload(duration time.Duration, sizeBytes int64, err error)
	RecordDownload(duration time.Duration, err error)
	RecordDelete(duration time.Duration, err error)
	RecordList(duration time.Duration, err error)
}

// PrometheusObserver exports storage metrics to Prometheus.
type PrometheusObserver struct {
	duration    *prometheus.HistogramVec
	errors      *prometheus.CounterVec
	uploadBytes prometheus.Counter
}

// NewPrometheusObserver registers the storage collectors with reg, reusing
// collectors that are already registered under the same names.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "cloudpocket"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &PrometheusObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Latency of object storage operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operation_errors_total",
			Help:      "Count of failed object storage operations. Missing keys on download are not counted.",
		}, []string{"operation"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "uploaded_bytes_total",
			Help:      "Cumulative payload size successfully uploaded to object storage.",
		}),
	}

	if err := reg.Register(o.duration); err != nil {
		existing, ok := alreadyRegistered[*prometheus.HistogramVec](err)
		if !ok {
			return nil, fmt.Errorf("register storage histogram: %w", err)
		}
		o.duration = existing
	}
	if err := reg.Register(o.errors); err != nil {
		existing, ok := alreadyRegistered[*prometheus.CounterVec](err)
		if !ok {
			return nil, fmt.Errorf("register storage error counter: %w", err)
		}
		o.errors = existing
	}
	if err := reg.Register(o.uploadBytes); err != nil {
		existing, ok := alreadyRegistered[prometheus.Counter](err)
		if !ok {
			return nil, fmt.Errorf("register uploaded bytes counter: %w", err)
		}
		o.uploadBytes = existing
	}
	return o, nil
}

func alreadyRegistered[T prometheus.Collector](err error) (T, bool) {
	var zero T
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return zero, false
	}
	existing, ok := are.ExistingCollector.(T)
	return existing, ok
}

// RecordUpload tracks upload duration, size, and failures.
func (o *PrometheusObserver) RecordUpload(duration time.Duration, sizeBytes int64, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues("upload").Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues("upload").Inc()
		return
	}
	if sizeBytes > 0 {
		o.uploadBytes.Add(float64(sizeBytes))
	}
}

func (o *PrometheusObserver) RecordDownload(duration time.Duration, err error) {
	// A missing key is a normal answer, not a backend failure.
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	recordOperation(o, "download", duration, err)
}

func (o *PrometheusObserver) RecordDelete(duration time.Duration, err error) {
	recordOperation(o, "delete", duration, err)
}

func (o *PrometheusObserver) RecordList(duration time.Duration, err error) {
	recordOperation(o, "list", duration, err)
}

func recordOperation(o *PrometheusObserver, op string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues(op).Inc()
	}
}

// instrumented decorates a Storage with an Observer.
type instrumented struct {
	next Storage
	obs  Observer
}

// Instrument wraps s so that every call is reported to obs. A nil observer
// returns s unchanged.
func Instrument(s Storage, obs Observer) Storage {
	if obs == nil {
		return s
	}
	return &instrumented{next: s, obs: obs}
}

func (i *instrumented) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	start := time.Now()
	err := i.next.Upload(ctx, key, reader, size, contentType)
	i.obs.RecordUpload(time.Since(start), size, err)
	return err
}

func (i *instrumented) Download(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error) {
	start := time.Now()
	rc, info, err := i.next.Download(ctx, key)
	i.obs.RecordDownload(time.Since(start), err)
	return rc, info, err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := i.next.Delete(ctx, key)
	i.obs.RecordDelete(time.Since(start), err)
	return err
}

func (i *instrumented) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	start := time.Now()
	objects, err := i.next.List(ctx, prefix)
	i.obs.RecordList(time.Since(start), err)
	return objects, err
}
