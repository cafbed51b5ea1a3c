package capture

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSnapshotRequiresURLAndOutput(t *testing.T) {
	ctx := context.Background()
	if err := Snapshot(ctx, Options{OutputPath: "x.png"}); !errors.Is(err, ErrNoURL) {
		t.Fatalf("err = %v, want ErrNoURL", err)
	}
	if err := Snapshot(ctx, Options{URL: "http://127.0.0.1/calendar"}); !errors.Is(err, ErrNoOutput) {
		t.Fatalf("err = %v, want ErrNoOutput", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{URL: "http://127.0.0.1/calendar", OutputPath: "out.png"}
	if err := o.normalize(); err != nil {
		t.Fatal(err)
	}
	if o.Width != DefaultWidth || o.Height != DefaultHeight || o.Timeout != DefaultTimeout {
		t.Fatalf("defaults not applied: %+v", o)
	}

	o = Options{URL: "u", OutputPath: "p", Width: 800, Height: 480, Timeout: time.Second}
	if err := o.normalize(); err != nil {
		t.Fatal(err)
	}
	if o.Width != 800 || o.Height != 480 || o.Timeout != time.Second {
		t.Fatalf("explicit values overridden: %+v", o)
	}
}
