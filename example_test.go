package docseq_test

import (
	"context"
	"fmt"

	"github.com/xraph/docseq"
	"github.com/xraph/docseq/backfill"
	"github.com/xraph/docseq/counter"
	"github.com/xraph/docseq/store/memory"
)

func Example() {
	seq, err := docseq.New(memory.New())
	if err != nil {
		panic(err)
	}
	ctx := context.Background()
	if err := seq.Start(ctx); err != nil {
		panic(err)
	}
	defer seq.Stop()

	for range 3 {
		num, _ := seq.GenerateNextNumber(ctx, docseq.Request{Series: docseq.KeyPayment})
		fmt.Println(num)
	}
	// Output:
	// PAY000001
	// PAY000002
	// PAY000003
}

func ExampleSequencer_PeekNextNumber() {
	seq, _ := docseq.New(memory.New())
	ctx := context.Background()

	_, _ = seq.Seed(ctx, docseq.KeyQuotation, "QT", 50)

	req := docseq.Request{Series: docseq.KeyQuotation}
	preview, _ := seq.PeekNextNumber(ctx, req)
	issued, _ := seq.GenerateNextNumber(ctx, req)
	next, _ := seq.PeekNextNumber(ctx, req)

	fmt.Println(preview, issued, next)
	// Output: QT000051 QT000051 QT000052
}

func ExampleWithTenant() {
	seq, _ := docseq.New(memory.New(), docseq.WithSeries(counter.Series{
		Key: docseq.KeyReceipt, Prefix: "RC", TenantScoped: true,
	}))
	ctx := docseq.WithTenant(context.Background(), "t_1")

	iss, _ := seq.Issue(ctx, docseq.Request{Series: docseq.KeyReceipt})
	fmt.Println(iss.Key, iss.Number)
	// Output: receipt:t_1 RC000001
}

func ExampleSequencer_Backfill() {
	seq, _ := docseq.New(memory.New())
	ctx := context.Background()

	existing := backfill.SliceSource{"INV000007", "INV000031", "draft"}
	report, _ := seq.Backfill(ctx, docseq.Request{Series: docseq.KeyInvoice}, existing, backfill.StrategyMaxOrdinal)
	fmt.Println(report.Matched, report.Sequence)

	num, _ := seq.GenerateNextNumber(ctx, docseq.Request{Series: docseq.KeyInvoice})
	fmt.Println(num)
	// Output:
	// 2 31
	// INV000032
}
