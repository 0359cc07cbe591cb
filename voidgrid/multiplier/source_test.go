package multiplier

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStackResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("neutral stack", func(t *testing.T) {
		v := NeutralStack().Resolve(ctx, "0xabc")
		if v.Prestige != 1.0 || v.CreatorTier != 1.0 || v.District != 1.0 || v.MiniApp != 1.0 {
			t.Errorf("Resolve() = %+v, want all 1.0", v)
		}
	})

	t.Run("failing source degrades to neutral", func(t *testing.T) {
		st := NeutralStack()
		st.Prestige = Func(func(ctx context.Context, address string) (float64, error) {
			return 0, errors.New("prestige service down")
		})
		v := st.Resolve(ctx, "0xabc")
		if v.Prestige != Neutral {
			t.Errorf("Prestige = %v, want neutral %v", v.Prestige, Neutral)
		}
	})

	t.Run("nil source is neutral", func(t *testing.T) {
		v := Stack{}.Resolve(ctx, "0xabc")
		if v.Prestige != Neutral || v.MiniApp != Neutral {
			t.Errorf("Resolve() = %+v, want all neutral", v)
		}
	})

	t.Run("negative values are discarded", func(t *testing.T) {
		st := NeutralStack()
		st.District = Static(-3)
		v := st.Resolve(ctx, "0xabc")
		if v.District != Neutral {
			t.Errorf("District = %v, want neutral", v.District)
		}
	})
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	calls := 0
	src := Func(func(ctx context.Context, address string) (float64, error) {
		calls++
		return 1.5, nil
	})

	cached := NewCached(src, time.Minute)
	for i := 0; i < 5; i++ {
		m, err := cached.Multiplier(ctx, "0xabc")
		if err != nil {
			t.Fatalf("Multiplier() error = %v", err)
		}
		if m != 1.5 {
			t.Fatalf("Multiplier() = %v, want 1.5", m)
		}
	}
	if calls != 1 {
		t.Errorf("inner source called %d times, want 1", calls)
	}

	// Different addresses miss independently.
	if _, err := cached.Multiplier(ctx, "0xdef"); err != nil {
		t.Fatalf("Multiplier() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("inner source called %d times, want 2", calls)
	}
}
