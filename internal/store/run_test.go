package store_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/soundprobe/soundprobe/internal/store"
	"github.com/soundprobe/soundprobe/internal/store/migrations"
)

var _ = Describe("RunStore", func() {
	var (
		ctx context.Context
		s   *store.Store
		db  *sql.DB
	)

	newRun := func(baseURL string, failed int) *store.Run {
		return &store.Run{
			ID:        uuid.New(),
			BaseURL:   baseURL,
			StartedAt: time.Now().UTC().Truncate(time.Millisecond),
			ElapsedMs: 4200,
			Passed:    10,
			Failed:    failed,
			Skipped:   2,
			Results: []store.CheckResult{
				{Position: 0, Name: "health: server reachable", Status: "PASS"},
				{Position: 1, Name: "inspire: basic query", Status: "PASS"},
			},
		}
	}

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())

		err = migrations.Run(ctx, db)
		Expect(err).NotTo(HaveOccurred())

		s = store.NewStore(db)
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Context("Get", func() {
		// Given an empty history store
		// When we look up an unknown run id
		// Then it should return ErrRunNotFound
		It("should return ErrRunNotFound for an unknown id", func() {
			_, err := s.Runs().Get(ctx, uuid.New())
			Expect(err).To(MatchError(store.ErrRunNotFound))
		})

		// Given a saved run with results
		// When we retrieve it by id
		// Then the counters and ordered results should round-trip
		It("should return a saved run with its results", func() {
			run := newRun("http://localhost:8001", 1)
			Expect(s.Runs().Save(ctx, run)).To(Succeed())

			retrieved, err := s.Runs().Get(ctx, run.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.BaseURL).To(Equal(run.BaseURL))
			Expect(retrieved.Passed).To(Equal(10))
			Expect(retrieved.Failed).To(Equal(1))
			Expect(retrieved.Skipped).To(Equal(2))
			Expect(retrieved.Results).To(HaveLen(2))
			Expect(retrieved.Results[0].Name).To(Equal("health: server reachable"))
			Expect(retrieved.Results[1].Position).To(Equal(1))
		})
	})

	Context("List", func() {
		// Given runs against two servers, one of them failing
		// When we list with and without filters
		// Then the filters should narrow the result set accordingly
		It("should filter by base URL and failure", func() {
			Expect(s.Runs().Save(ctx, newRun("http://a:8001", 0))).To(Succeed())
			Expect(s.Runs().Save(ctx, newRun("http://b:8001", 3))).To(Succeed())
			Expect(s.Runs().Save(ctx, newRun("http://b:8001", 0))).To(Succeed())

			all, err := s.Runs().List(ctx, store.ListParams{})
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))

			byURL, err := s.Runs().List(ctx, store.ListParams{BaseURL: "http://b:8001"})
			Expect(err).NotTo(HaveOccurred())
			Expect(byURL).To(HaveLen(2))

			failing, err := s.Runs().List(ctx, store.ListParams{FailedOnly: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(failing).To(HaveLen(1))
			Expect(failing[0].Failed).To(Equal(3))
		})

		// Given more runs than the limit
		// When we list with a limit
		// Then only that many runs should come back
		It("should honor the limit", func() {
			for i := 0; i < 5; i++ {
				Expect(s.Runs().Save(ctx, newRun("http://localhost:8001", 0))).To(Succeed())
			}

			limited, err := s.Runs().List(ctx, store.ListParams{Limit: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(limited).To(HaveLen(2))
		})
	})
})
