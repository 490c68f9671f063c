package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/mergington/signup/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestActivitySpotsLeft(t *testing.T) {
	convey.Convey("Given an activity with capacity and roster", t, func() {
		convey.Convey("When capacity exceeds the roster", func() {
			a := model.Activity{
				MaxParticipants: 10,
				Participants: []model.Participant{
					model.Bare("a@x.com"), model.Bare("b@x.com"), model.Bare("c@x.com"),
				},
			}

			convey.Convey("Then spots left is the difference", func() {
				convey.So(a.SpotsLeft(), convey.ShouldEqual, 7)
			})
		})

		convey.Convey("When the roster is empty", func() {
			a := model.Activity{MaxParticipants: 12}

			convey.Convey("Then spots left equals capacity", func() {
				convey.So(a.SpotsLeft(), convey.ShouldEqual, 12)
			})
		})

		convey.Convey("When capacity is missing from the wire data", func() {
			var a model.Activity
			err := json.Unmarshal([]byte(`{"description":"d","participants":["a@x.com"]}`), &a)

			convey.Convey("Then spots left goes negative and nothing panics", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(a.SpotsLeft(), convey.ShouldEqual, -1)
			})
		})
	})
}

func TestActivitiesDecodeOrder(t *testing.T) {
	convey.Convey("Given the upstream activities object", t, func() {
		payload := `{
			"Soccer Team": {
				"description": "Outdoor team sport",
				"schedule": "Mondays, 4:00 PM",
				"max_participants": 22,
				"participants": ["alex@mergington.edu", {"name": "Nina", "email": "nina@mergington.edu"}]
			},
			"Art Club": {
				"description": "Drawing and painting",
				"schedule": "Wednesdays, 3:30 PM",
				"max_participants": 18,
				"participants": []
			},
			"Chess Club": {
				"description": "Strategies and tournaments",
				"schedule": "Fridays, 3:30 PM",
				"max_participants": 12,
				"participants": ["michael@mergington.edu"]
			}
		}`

		convey.Convey("When decoding the snapshot", func() {
			var as model.Activities
			err := json.Unmarshal([]byte(payload), &as)

			convey.Convey("Then the server's key order is preserved", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(as), convey.ShouldEqual, 3)
				convey.So(as[0].Name, convey.ShouldEqual, "Soccer Team")
				convey.So(as[1].Name, convey.ShouldEqual, "Art Club")
				convey.So(as[2].Name, convey.ShouldEqual, "Chess Club")
			})

			convey.Convey("Then nested fields and both participant shapes decode", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(as[0].Activity.MaxParticipants, convey.ShouldEqual, 22)
				convey.So(as[0].Activity.Participants[0], convey.ShouldResemble, model.Bare("alex@mergington.edu"))
				convey.So(as[0].Activity.Participants[1].Display(), convey.ShouldEqual, "Nina")
				convey.So(as[1].Activity.Participants, convey.ShouldBeEmpty)
			})

			convey.Convey("Then the participant total spans the snapshot", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(as.Participants(), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When decoding re-marshalled output", func() {
			var as model.Activities
			convey.So(json.Unmarshal([]byte(payload), &as), convey.ShouldBeNil)

			data, err := json.Marshal(as)
			var again model.Activities
			convey.So(err, convey.ShouldBeNil)
			convey.So(json.Unmarshal(data, &again), convey.ShouldBeNil)

			convey.Convey("Then order survives the round trip", func() {
				convey.So(again[0].Name, convey.ShouldEqual, "Soccer Team")
				convey.So(again[2].Name, convey.ShouldEqual, "Chess Club")
			})
		})

		convey.Convey("When the payload is not an object", func() {
			var as model.Activities
			err := json.Unmarshal([]byte(`[1,2,3]`), &as)

			convey.Convey("Then decoding fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
