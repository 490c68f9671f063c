package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/mergington/signup/internal/adapters/remote"
	service "github.com/mergington/signup/internal/app"
	model "github.com/mergington/signup/internal/domain/model"
	"github.com/mergington/signup/internal/feedback"
	"github.com/mergington/signup/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// fakeRemote scripts the upstream service for controller tests.
type fakeRemote struct {
	payloads  []string // successive List responses, last one repeats
	listErr   error
	listCalls int

	outcome    remote.Outcome
	mutateErr  error
	registered []string // "activity/email" per Register call
	removed    []string // "activity/email" per Unregister call
}

func (f *fakeRemote) List(_ context.Context) (model.Activities, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	idx := f.listCalls - 1
	if idx >= len(f.payloads) {
		idx = len(f.payloads) - 1
	}
	var as model.Activities
	if err := json.Unmarshal([]byte(f.payloads[idx]), &as); err != nil {
		return nil, err
	}
	return as, nil
}

func (f *fakeRemote) Register(_ context.Context, activity, email string) (remote.Outcome, error) {
	f.registered = append(f.registered, activity+"/"+email)
	return f.outcome, f.mutateErr
}

func (f *fakeRemote) Unregister(_ context.Context, activity, email string) (remote.Outcome, error) {
	f.removed = append(f.removed, activity+"/"+email)
	return f.outcome, f.mutateErr
}

const chessBefore = `{"Chess Club":{"description":"d","schedule":"s","max_participants":10,
	"participants":["michael@mergington.edu","daniel@mergington.edu"]}}`

const chessAfter = `{"Chess Club":{"description":"d","schedule":"s","max_participants":10,
	"participants":["michael@mergington.edu","daniel@mergington.edu","a@b.com"]}}`

func startService(t *testing.T, fake *fakeRemote) *service.Service {
	t.Helper()
	if err := logger.Init(io.Discard); err != nil {
		t.Fatalf("logger: %v", err)
	}
	svc := service.New(
		service.WithRemote(fake),
		service.WithBanner(feedback.New(feedback.WithTTL(time.Minute))),
		service.WithQueueSize(8),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestServiceInitialFetch(t *testing.T) {
	convey.Convey("Given the controller at startup", t, func() {
		convey.Convey("When the initial fetch succeeds", func() {
			fake := &fakeRemote{payloads: []string{chessBefore}}
			svc := startService(t, fake)

			snapshot, failed := svc.Snapshot()

			convey.Convey("Then the snapshot holds the fetched activities", func() {
				convey.So(failed, convey.ShouldBeFalse)
				convey.So(len(snapshot), convey.ShouldEqual, 1)
				convey.So(snapshot[0].Name, convey.ShouldEqual, "Chess Club")
				convey.So(len(snapshot[0].Participants), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the initial fetch fails", func() {
			fake := &fakeRemote{listErr: errors.New("connection refused")}
			svc := startService(t, fake)

			snapshot, failed := svc.Snapshot()

			convey.Convey("Then the failure flag is set and the snapshot stays empty", func() {
				convey.So(failed, convey.ShouldBeTrue)
				convey.So(snapshot, convey.ShouldBeEmpty)
			})

			convey.Convey("Then a later successful refresh recovers", func() {
				fake.listErr = nil
				fake.payloads = []string{chessBefore}
				convey.So(svc.Refresh(context.Background()), convey.ShouldBeNil)

				recovered, failedNow := svc.Snapshot()
				convey.So(failedNow, convey.ShouldBeFalse)
				convey.So(len(recovered), convey.ShouldEqual, 1)
			})
		})
	})
}

func TestServiceSignupFlow(t *testing.T) {
	convey.Convey("Given Chess Club with 2 of 10 spots taken", t, func() {
		convey.Convey("When a signup command succeeds", func() {
			fake := &fakeRemote{
				payloads: []string{chessBefore, chessAfter},
				outcome:  remote.Outcome{OK: true, Message: "Signed up!"},
			}
			svc := startService(t, fake)

			err := svc.Dispatch(context.Background(), service.Command{
				Kind:     service.CommandSignup,
				Activity: "Chess Club",
				Email:    "a@b.com",
			})

			convey.Convey("Then the mutation is issued and the snapshot refetched", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(fake.registered, convey.ShouldResemble, []string{"Chess Club/a@b.com"})
				convey.So(fake.listCalls, convey.ShouldEqual, 2) // initial + post-mutation

				snapshot, _ := svc.Snapshot()
				convey.So(len(snapshot[0].Participants), convey.ShouldEqual, 3)
				convey.So(snapshot[0].Participants[2].Identity(), convey.ShouldEqual, "a@b.com")
			})

			convey.Convey("Then the banner shows the server's success message", func() {
				convey.So(err, convey.ShouldBeNil)
				msg, visible := svc.Feedback()
				convey.So(visible, convey.ShouldBeTrue)
				convey.So(msg.Text, convey.ShouldEqual, "Signed up!")
				convey.So(msg.Kind, convey.ShouldEqual, feedback.Success)
			})
		})

		convey.Convey("When the server rejects the signup", func() {
			fake := &fakeRemote{
				payloads: []string{chessBefore},
				outcome:  remote.Outcome{OK: false, Detail: "Already signed up"},
			}
			svc := startService(t, fake)

			err := svc.Dispatch(context.Background(), service.Command{
				Kind:     service.CommandSignup,
				Activity: "Chess Club",
				Email:    "michael@mergington.edu",
			})

			convey.Convey("Then the detail is shown and no refetch happens", func() {
				convey.So(err, convey.ShouldBeNil)
				msg, visible := svc.Feedback()
				convey.So(visible, convey.ShouldBeTrue)
				convey.So(msg.Text, convey.ShouldEqual, "Already signed up")
				convey.So(msg.Kind, convey.ShouldEqual, feedback.Error)
				convey.So(fake.listCalls, convey.ShouldEqual, 1) // initial fetch only

				snapshot, _ := svc.Snapshot()
				convey.So(len(snapshot[0].Participants), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the server rejects without a detail", func() {
			fake := &fakeRemote{
				payloads: []string{chessBefore},
				outcome:  remote.Outcome{OK: false},
			}
			svc := startService(t, fake)

			err := svc.Dispatch(context.Background(), service.Command{
				Kind:     service.CommandSignup,
				Activity: "Chess Club",
				Email:    "a@b.com",
			})

			convey.Convey("Then the generic fallback is shown", func() {
				convey.So(err, convey.ShouldBeNil)
				msg, _ := svc.Feedback()
				convey.So(msg.Text, convey.ShouldEqual, "An error occurred")
			})
		})

		convey.Convey("When the network fails mid-mutation", func() {
			fake := &fakeRemote{
				payloads:  []string{chessBefore},
				mutateErr: errors.New("dial tcp: connection refused"),
			}
			svc := startService(t, fake)

			err := svc.Dispatch(context.Background(), service.Command{
				Kind:     service.CommandSignup,
				Activity: "Chess Club",
				Email:    "a@b.com",
			})

			convey.Convey("Then a generic error is surfaced and no refetch happens", func() {
				convey.So(err, convey.ShouldBeNil)
				msg, visible := svc.Feedback()
				convey.So(visible, convey.ShouldBeTrue)
				convey.So(msg.Text, convey.ShouldEqual, "Failed to sign up. Please try again.")
				convey.So(msg.Kind, convey.ShouldEqual, feedback.Error)
				convey.So(fake.listCalls, convey.ShouldEqual, 1)
			})
		})
	})
}

func TestServiceUnregisterFlow(t *testing.T) {
	convey.Convey("Given a registered participant", t, func() {
		convey.Convey("When an unregister command succeeds", func() {
			fake := &fakeRemote{
				payloads: []string{chessAfter, chessBefore},
				outcome:  remote.Outcome{OK: true, Message: "Unregistered"},
			}
			svc := startService(t, fake)

			err := svc.Dispatch(context.Background(), service.Command{
				Kind:     service.CommandUnregister,
				Activity: "Chess Club",
				Email:    "a@b.com",
			})

			convey.Convey("Then the participant is gone after the refetch", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(fake.removed, convey.ShouldResemble, []string{"Chess Club/a@b.com"})

				snapshot, _ := svc.Snapshot()
				for _, p := range snapshot[0].Participants {
					convey.So(p.Identity(), convey.ShouldNotEqual, "a@b.com")
				}
			})
		})

		convey.Convey("When the network fails mid-unregister", func() {
			fake := &fakeRemote{
				payloads:  []string{chessAfter},
				mutateErr: errors.New("timeout"),
			}
			svc := startService(t, fake)

			err := svc.Dispatch(context.Background(), service.Command{
				Kind:     service.CommandUnregister,
				Activity: "Chess Club",
				Email:    "a@b.com",
			})

			convey.Convey("Then the unregister-specific generic copy is shown", func() {
				convey.So(err, convey.ShouldBeNil)
				msg, _ := svc.Feedback()
				convey.So(msg.Text, convey.ShouldEqual, "Failed to unregister. Please try again.")
			})
		})
	})
}

func TestServiceDispatchGuards(t *testing.T) {
	convey.Convey("Given controller lifecycle edges", t, func() {
		convey.Convey("When dispatching before start", func() {
			svc := service.New(service.WithRemote(&fakeRemote{payloads: []string{"{}"}}))
			err := svc.Dispatch(context.Background(), service.Command{Kind: service.CommandSignup})

			convey.Convey("Then it refuses", func() {
				convey.So(errors.Is(err, service.ErrNotStarted), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When starting without a remote client", func() {
			_ = logger.Init(io.Discard)
			svc := service.New()
			err := svc.Start(context.Background())

			convey.Convey("Then start fails", func() {
				convey.So(errors.Is(err, service.ErrNoRemote), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When starting twice", func() {
			fake := &fakeRemote{payloads: []string{"{}"}}
			svc := startService(t, fake)

			convey.Convey("Then the second start is a no-op", func() {
				convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}
