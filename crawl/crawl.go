package main

import (
	"flag"
	"log"
	"os"

	extr "github.com/nci/gcube/crawl/extractor"
	"github.com/nci/gcube/reader"
	"github.com/nci/gcube/region"
	"github.com/nci/gcube/utils"
	gp "github.com/nci/gcube/worker/gdalprocess"
)

func main() {
	conc := flag.Int("conc", 4, "Number of directories crawled concurrently")
	filter := flag.String("filter", "", "Filter expression over path, name, type ('d' or 'f') and product_type")
	followSymlink := flag.Bool("follow_symlink", false, "Follow symbolic links")
	outputFormat := flag.String("fmt", "json", "Output format: json or tsv")
	nameSpace := flag.String("namespace", "", "Namespace recorded with every product")
	footprint := flag.Bool("footprint", false, "Open products to read their CRS and footprint")
	formatsFile := flag.String("formats", "", "Format band tables overriding the built-in ones")
	verbose := flag.Bool("v", false, "Verbose")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("Please provide one or more directories to crawl")
	}

	expr, err := extr.ParseFilter(*filter)
	if err != nil {
		log.Fatalf("Invalid filter: %v", err)
	}

	crawler := extr.NewPosixCrawler(*conc, expr, *followSymlink, *outputFormat)
	crawler.NameSpace = *nameSpace
	crawler.Verbose = *verbose

	if *footprint {
		utils.InitGdal()
		resolver := region.NewResolver(&gp.Engine{})
		env := &reader.Env{Opener: &gp.Opener{}, Resolver: resolver, Verbose: *verbose}
		if len(*formatsFile) > 0 {
			env.Tables, err = reader.LoadTables(*formatsFile)
			if err != nil {
				log.Fatal(err)
			}
		}
		reg, err := reader.NewRegistry(env)
		if err != nil {
			log.Fatal(err)
		}
		crawler.Footprinter = &extr.Footprinter{Registry: reg, Resolver: resolver}
	}

	failed := false
	for _, root := range flag.Args() {
		if err := crawler.Crawl(root); err != nil {
			os.Stderr.Write([]byte(err.Error() + "\n"))
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
