package claim

import (
	"fmt"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	record := func(n int) *AuditRecord {
		return &AuditRecord{
			ID:           fmt.Sprintf("%020d", n),
			SessionID:    "session-1",
			ClaimID:      int64(1000 + n),
			Success:      true,
			ClaimStatus:  "Approved",
			DecisionID:   fmt.Sprintf("decision-%d", n),
			ResponseTime: 250 * time.Millisecond,
			Request:      `{"claim":{"claimId":1001}}`,
			Response:     `{"result":{"claimStatus":"Approved"}}`,
			CreatedAt:    time.Date(2024, 7, 1, 0, 0, n, 0, time.UTC),
		}
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "audit.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("Append", func() {
		It("should store the record", func() {
			Expect(db.Append(record(1))).To(Succeed())

			saved, err := db.Get(record(1).ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved).To(Equal(record(1)))
		})

		It("should require an ID", func() {
			r := record(1)
			r.ID = ""
			Expect(db.Append(r)).NotTo(Succeed())
		})
	})

	Describe("Get", func() {
		When("record does not exist", func() {
			It("should return an error", func() {
				_, err := db.Get("missing")
				Expect(err).To(MatchError(ContainSubstring("audit record not found")))
			})
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for i := 1; i <= 5; i++ {
				Expect(db.Append(record(i))).To(Succeed())
			}
		})

		It("should return records newest first", func() {
			records, err := db.List(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(5))
			Expect(records[0].ClaimID).To(Equal(int64(1005)))
			Expect(records[4].ClaimID).To(Equal(int64(1001)))
		})

		It("should honor the limit", func() {
			records, err := db.List(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[1].ClaimID).To(Equal(int64(1004)))
		})
	})

	When("the database is empty", func() {
		It("should list nothing", func() {
			records, err := db.List(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(BeEmpty())
		})
	})

	When("the database is reopened", func() {
		It("should keep the records", func() {
			Expect(db.Append(record(1))).To(Succeed())
			Expect(db.Close()).To(Succeed())

			var err error
			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())

			records, err := db.List(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
		})
	})

	When("the path is not writable", func() {
		It("should return an error", func() {
			_, err := NewBoltDB(filepath.Join(tmpDir, "missing-dir", "audit.db"))
			Expect(err).To(HaveOccurred())
		})
	})
})
