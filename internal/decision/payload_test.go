package decision

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("FormatDate", func() {
	It("should format a date as midnight UTC", func() {
		d := time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)
		Expect(FormatDate(d)).To(Equal("2024-05-05T00:00:00.000+0000"))
	})

	It("should ignore the time of day", func() {
		d := time.Date(2024, 12, 31, 23, 59, 59, 999, time.UTC)
		Expect(FormatDate(d)).To(Equal("2024-12-31T00:00:00.000+0000"))
	})

	It("should keep the calendar date of non-UTC inputs", func() {
		loc := time.FixedZone("UTC+10", 10*60*60)
		d := time.Date(2024, 1, 1, 5, 0, 0, 0, loc)
		Expect(FormatDate(d)).To(Equal("2024-01-01T00:00:00.000+0000"))
	})

	It("should parse back to the same date", func() {
		d := time.Date(2024, 2, 29, 13, 0, 0, 0, time.UTC)
		parsed, err := ParseDate(FormatDate(d))
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed).To(Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
	})
})

var _ = Describe("DaysBetween", func() {
	It("should count whole days", func() {
		s := time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)
		t := time.Date(2024, 6, 23, 0, 0, 0, 0, time.UTC)
		Expect(DaysBetween(s, t)).To(Equal(49))
	})

	It("should return zero for the same day", func() {
		s := time.Date(2024, 5, 5, 8, 0, 0, 0, time.UTC)
		t := time.Date(2024, 5, 5, 20, 0, 0, 0, time.UTC)
		Expect(DaysBetween(s, t)).To(Equal(0))
	})

	It("should be negative when misordered", func() {
		s := time.Date(2024, 6, 23, 0, 0, 0, 0, time.UTC)
		t := time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)
		Expect(DaysBetween(s, t)).To(Equal(-49))
	})

	It("should count days across more than three centuries", func() {
		s := time.Date(1700, 1, 1, 0, 0, 0, 0, time.UTC)
		t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		Expect(DaysBetween(s, t)).To(Equal(118338))
		Expect(DaysBetween(t, s)).To(Equal(-118338))
	})

	It("should not be affected by daylight saving transitions", func() {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			Skip("timezone data unavailable")
		}
		s := time.Date(2024, 3, 9, 0, 0, 0, 0, loc)
		t := time.Date(2024, 3, 11, 0, 0, 0, 0, loc)
		Expect(DaysBetween(s, t)).To(Equal(2))
	})
})

var _ = Describe("BuildPayload", func() {
	var (
		req  ClaimRequest
		data []byte
		err  error
	)

	BeforeEach(func() {
		req = ClaimRequest{
			ClaimID:        2001,
			BilledAmt:      decimal.RequireFromString("1234.5"),
			ServiceDate:    time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC),
			SubmissionDate: time.Date(2024, 12, 23, 0, 0, 0, 0, time.UTC),
		}
	})

	JustBeforeEach(func() {
		data, err = BuildPayload(req)
	})

	It("should not return an error", func() {
		Expect(err).NotTo(HaveOccurred())
	})

	It("should nest the fields under claim", func() {
		Expect(data).To(MatchJSON(`{"claim":{"claimId":2001,"billedAmt":1234.50,"serviceDate":"2024-05-05T00:00:00.000+0000","submissionDate":"2024-12-23T00:00:00.000+0000"}}`))
	})

	It("should encode the amount as a JSON number", func() {
		Expect(string(data)).To(ContainSubstring(`"billedAmt":1234.50`))
	})

	It("should round-trip through a conformant reader", func() {
		var decoded struct {
			Claim struct {
				ClaimID        int64           `json:"claimId"`
				BilledAmt      decimal.Decimal `json:"billedAmt"`
				ServiceDate    string          `json:"serviceDate"`
				SubmissionDate string          `json:"submissionDate"`
			} `json:"claim"`
		}
		Expect(json.Unmarshal(data, &decoded)).To(Succeed())
		Expect(decoded.Claim.ClaimID).To(Equal(req.ClaimID))
		Expect(decoded.Claim.BilledAmt.Equal(req.BilledAmt)).To(BeTrue())

		serviceDate, err := ParseDate(decoded.Claim.ServiceDate)
		Expect(err).NotTo(HaveOccurred())
		Expect(serviceDate).To(Equal(req.ServiceDate))

		submissionDate, err := ParseDate(decoded.Claim.SubmissionDate)
		Expect(err).NotTo(HaveOccurred())
		Expect(submissionDate).To(Equal(req.SubmissionDate))
	})
})

var _ = Describe("parseDecisionResponse", func() {
	var (
		body string
		resp *decisionResponse
		err  error
	)

	JustBeforeEach(func() {
		resp, err = parseDecisionResponse([]byte(body))
	})

	When("all fields are present", func() {
		BeforeEach(func() {
			body = `{"result":{"claimStatus":"Approved","messages":["a","b"]},"__DecisionID__":"id-1","extra":{"x":1}}`
		})

		It("should read every field", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.ClaimStatus).To(Equal("Approved"))
			Expect(resp.Messages).To(Equal([]string{"a", "b"}))
			Expect(resp.DecisionID).To(Equal("id-1"))
		})
	})

	When("messages is absent", func() {
		BeforeEach(func() {
			body = `{"result":{"claimStatus":"Approved"}}`
		})

		It("should default to an empty list", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Messages).NotTo(BeNil())
			Expect(resp.Messages).To(BeEmpty())
		})
	})

	When("fields have unexpected types", func() {
		BeforeEach(func() {
			body = `{"result":{"claimStatus":42,"messages":["text",7,null]},"__DecisionID__":12345}`
		})

		It("should fall back or stringify", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.ClaimStatus).To(Equal(StatusUnknown))
			Expect(resp.Messages).To(Equal([]string{"text", "7"}))
			Expect(resp.DecisionID).To(Equal("12345"))
		})
	})

	When("result is not an object", func() {
		BeforeEach(func() {
			body = `{"result":"nope"}`
		})

		It("should fall back to placeholders", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.ClaimStatus).To(Equal(StatusUnknown))
		})
	})

	DescribeTable("top-level JSON that is not an object",
		func(b string) {
			parsed, err := parseDecisionResponse([]byte(b))
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed.ClaimStatus).To(Equal(StatusUnknown))
			Expect(parsed.Messages).To(BeEmpty())
			Expect(parsed.DecisionID).To(BeEmpty())
		},
		Entry("array", `[{"claimStatus":"Approved"}]`),
		Entry("string", `"ok"`),
		Entry("number", `42`),
		Entry("null", `null`),
	)

	When("the body is not JSON", func() {
		BeforeEach(func() {
			body = `not json`
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})
