package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/ideaboard/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestIdea(t *testing.T) {
	convey.Convey("Given an Idea", t, func() {
		idea := model.Idea{
			ID:          "1718000000000",
			StartupName: "Acme",
			Tagline:     "Widgets for all",
			Description: "We make widgets",
			Rating:      87,
			Votes:       3,
		}

		convey.Convey("When encoding it as JSON", func() {
			data, err := json.Marshal(idea)

			convey.Convey("Then it should use the persisted field names", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(data), convey.ShouldEqual,
					`{"id":"1718000000000","startupName":"Acme","tagline":"Widgets for all","description":"We make widgets","rating":87,"votes":3}`)
			})
		})

		convey.Convey("When decoding a record written by another client", func() {
			var decoded model.Idea
			err := json.Unmarshal([]byte(`{"id":"9","startupName":"B","tagline":"T","description":"D","rating":0,"votes":12,"extra":true}`), &decoded)

			convey.Convey("Then known fields should be read and unknown ones ignored", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(decoded.ID, convey.ShouldEqual, "9")
				convey.So(decoded.Votes, convey.ShouldEqual, 12)
				convey.So(decoded.Rating, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When rendering share text", func() {
			text := idea.ShareText()

			convey.Convey("Then it should list every field on its own line", func() {
				convey.So(text, convey.ShouldEqual,
					"Startup Idea: Acme\nTagline: Widgets for all\nDescription: We make widgets\nRating: 87\nVotes: 3")
			})
		})
	})
}

func TestFind(t *testing.T) {
	convey.Convey("Given a collection of ideas", t, func() {
		ideas := []model.Idea{{ID: "a"}, {ID: "b"}, {ID: "c"}}

		convey.Convey("Then Find should return the position of a known id", func() {
			convey.So(model.Find(ideas, "b"), convey.ShouldEqual, 1)
		})

		convey.Convey("And -1 for an unknown id", func() {
			convey.So(model.Find(ideas, "z"), convey.ShouldEqual, -1)
			convey.So(model.Find(nil, "a"), convey.ShouldEqual, -1)
		})
	})
}
