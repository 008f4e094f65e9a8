package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/ssh/terminal"

	proc "github.com/nci/gcube/processor"
	"github.com/nci/gcube/utils"
)

var passed string = "Passed"
var failed string = "Failed"

// readSuite reads "product_type path band[,band...]" lines.
func readSuite(file string) ([]*proc.BatchItem, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var items []*proc.BatchItem
	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("%s:%d: expected 'product_type path bands'", file, n)
		}
		items = append(items, &proc.BatchItem{ProductType: fields[0], Path: fields[1], Bands: strings.Split(fields[2], ",")})
	}
	return items, scanner.Err()
}

// Extract sends every item to the workers and checks each comes back
// as a valid cube.
func Extract(runner proc.Runner, items []*proc.BatchItem, concLevel int) (bool, time.Duration) {
	start := time.Now()
	var nFailed int32

	ctx := context.Background()
	conc := proc.NewConcLimiter(concLevel)
	for _, item := range items {
		conc.Increase(ctx)
		go func(item *proc.BatchItem) {
			defer conc.Decrease()
			products, err := runner.Run(ctx, item)
			if err == nil && len(products) == 0 {
				err = fmt.Errorf("no product returned")
			}
			for _, p := range products {
				if err == nil {
					err = p.Check()
				}
			}
			if err != nil {
				atomic.AddInt32(&nFailed, 1)
				log.Printf("%s: %v", item.Path, err)
			}
		}(item)
	}
	conc.Wait()

	return nFailed == 0, time.Since(start)
}

func inRed(str string) string {
	return fmt.Sprintf("\x1b[31;1m%s\x1b[0m", str)
}

func inGreen(str string) string {
	return fmt.Sprintf("\x1b[32;1m%s\x1b[0m", str)
}

func main() {
	host := flag.String("h", "localhost:6000", "gRPC worker address")
	suite := flag.String("s", "acpt_products.txt", "Test suite: one 'product_type path bands' per line")
	conc := flag.Int("n", 6, "Concurrency level for acceptance tests")
	flag.Parse()

	if terminal.IsTerminal(int(os.Stdout.Fd())) {
		passed = inGreen(passed)
		failed = inRed(failed)
	}

	items, err := readSuite(*suite)
	if err != nil {
		log.Fatal(err)
	}

	runner, err := proc.NewGRPCRunner([]string{*host}, utils.DefaultRecvMsgSize)
	if err != nil {
		log.Fatal(err)
	}
	defer runner.Close()

	fmt.Printf("Testing extraction of %d products: ", len(items))
	ok, t := Extract(runner, items, *conc)
	if !ok {
		fmt.Println(failed)
		os.Exit(1)
	}
	fmt.Println(passed, t)
}
