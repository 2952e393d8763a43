package ident_test

import (
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/ideaboard/internal/domain/ident"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClockGenerator(t *testing.T) {
	Convey("Given a ClockGenerator with a frozen clock", t, func() {
		frozen := time.UnixMilli(1700000000000)
		g := ident.NewClockGenerator(ident.WithClock(func() time.Time { return frozen }))

		Convey("When asking for several ids", func() {
			a, b, c := g.Next(), g.Next(), g.Next()

			Convey("Then they should start at the clock and count up", func() {
				So(a, ShouldEqual, "1700000000000")
				So(b, ShouldEqual, "1700000000001")
				So(c, ShouldEqual, "1700000000002")
			})
		})

		Convey("When the clock moves backwards", func() {
			first := g.Next()
			frozen = frozen.Add(-time.Hour)
			second := g.Next()

			Convey("Then ids should still increase", func() {
				f, _ := strconv.ParseInt(first, 10, 64)
				s, _ := strconv.ParseInt(second, 10, 64)
				So(s, ShouldEqual, f+1)
			})
		})
	})

	Convey("Given a ClockGenerator shared by goroutines", t, func() {
		g := ident.NewClockGenerator()
		var mu sync.Mutex
		seen := make(map[string]bool)
		var wg sync.WaitGroup

		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					id := g.Next()
					mu.Lock()
					seen[id] = true
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Then every id should be unique", func() {
			So(len(seen), ShouldEqual, 400)
		})
	})
}

func TestNewGenerator(t *testing.T) {
	Convey("Given scheme names", t, func() {
		Convey("When the scheme is empty or clock", func() {
			g1, err1 := ident.NewGenerator("")
			g2, err2 := ident.NewGenerator("Clock")

			Convey("Then a clock generator should be returned", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(g1, ShouldHaveSameTypeAs, &ident.ClockGenerator{})
				So(g2, ShouldHaveSameTypeAs, &ident.ClockGenerator{})
			})
		})

		Convey("When the scheme is uuid7", func() {
			g, err := ident.NewGenerator("uuid7")
			So(err, ShouldBeNil)
			id := g.Next()

			Convey("Then ids should parse as version 7 UUIDs", func() {
				parsed, perr := uuid.Parse(id)
				So(perr, ShouldBeNil)
				So(parsed.Version(), ShouldEqual, uuid.Version(7))
				So(g.Next(), ShouldNotEqual, id)
			})
		})

		Convey("When the scheme is unknown", func() {
			_, err := ident.NewGenerator("snowflake")

			Convey("Then it should return ErrUnknownScheme", func() {
				So(errors.Is(err, ident.ErrUnknownScheme), ShouldBeTrue)
			})
		})
	})
}
