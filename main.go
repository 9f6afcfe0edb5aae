package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"

	"github.com/golang/glog"
	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/spf13/viper"

	"github.com/prebid/prebid-eplanning/adapters"
	"github.com/prebid/prebid-eplanning/config"
	"github.com/prebid/prebid-eplanning/errortypes"
	"github.com/prebid/prebid-eplanning/exchange"
	"github.com/prebid/prebid-eplanning/logger"
	metricsConf "github.com/prebid/prebid-eplanning/metrics/config"
	"github.com/prebid/prebid-eplanning/openrtb_ext"
	"github.com/prebid/prebid-eplanning/server"
)

// Rev holds binary revision string
// Set manually at build time using:
//
//	go build -ldflags "-X main.Rev=`git rev-parse --short HEAD`"
var Rev string

const configFileName = "pbs"

func main() {
	flag.Parse() // required for glog flags and testing package flags

	cfg, err := loadConfig()
	if err != nil {
		glog.Exitf("Configuration could not be loaded or did not pass validation: %v", err)
	}

	appLogger, err := logger.New(cfg.Logging.Type, cfg.Logging.Level)
	if err != nil {
		glog.Exitf("Logger could not be set up: %v", err)
	}
	logger.SetLogger(appLogger)

	if err := serve(Rev, cfg, os.Stdin, os.Stdout); err != nil {
		glog.Exitf("prebid-eplanning failed: %v", err)
	}
}

func loadConfig() (*config.Configuration, error) {
	v := viper.New()
	config.SetupViper(v, configFileName)
	return config.New(v)
}

// serve builds the configured bidders and turns every OpenRTB request read from in, one JSON
// document per line, into the exchange calls the bidders would make.
func serve(revision string, cfg *config.Configuration, in io.Reader, out io.Writer) error {
	glog.Infof("prebid-eplanning revision %q starting", revision)

	activeBidders := exchange.GetActiveBidders(cfg.Adapters)
	bidderList := make([]openrtb_ext.BidderName, 0, len(activeBidders))
	for _, bidderName := range activeBidders {
		bidderList = append(bidderList, bidderName)
	}
	sort.Slice(bidderList, func(i, j int) bool { return bidderList[i] < bidderList[j] })

	metricsEngine := metricsConf.NewMetricsEngine(cfg, bidderList)
	if cfg.Metrics.Prometheus.Port != 0 {
		prometheusServer := server.NewPrometheusServer(cfg, metricsEngine)
		go func() {
			if err := prometheusServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				glog.Errorf("Prometheus server failed: %v", err)
			}
		}()
		defer prometheusServer.Shutdown(context.Background())
	}

	paramsValidator, err := openrtb_ext.NewBidderParamsValidator(cfg.BidderParamsDir)
	if err != nil {
		return fmt.Errorf("failed to load bidder params schemas: %v", err)
	}

	bidders, errs := exchange.BuildAdapters(cfg, metricsEngine)
	if len(errs) > 0 {
		return errortypes.NewAggregateErrors("failed to build adapters", errs)
	}

	return run(bidders, bidderList, paramsValidator, in, out)
}

type requestOutput struct {
	Bidder   openrtb_ext.BidderName  `json:"bidder"`
	Requests []*adapters.RequestData `json:"requests,omitempty"`
	Errors   []string                `json:"errors,omitempty"`
	Warnings []string                `json:"warnings,omitempty"`
}

func run(bidders map[openrtb_ext.BidderName]adapters.Bidder, order []openrtb_ext.BidderName, paramsValidator openrtb_ext.BidderParamValidator, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	encoder := json.NewEncoder(out)

	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var request openrtb2.BidRequest
		if err := json.Unmarshal(scanner.Bytes(), &request); err != nil {
			glog.Warningf("Skipping line %d, not an OpenRTB request: %v", line, err)
			continue
		}

		for _, bidderName := range order {
			bidder, ok := bidders[bidderName]
			if !ok {
				continue
			}
			bidderRequest, errs := validImps(paramsValidator, bidderName, &request)
			var reqData []*adapters.RequestData
			if len(bidderRequest.Imp) > 0 || len(errs) == 0 {
				var reqErrs []error
				reqData, reqErrs = bidder.MakeRequests(bidderRequest, &adapters.ExtraRequestInfo{PbsEntryPoint: "cli"})
				errs = append(errs, reqErrs...)
			}

			output := requestOutput{
				Bidder:   bidderName,
				Requests: reqData,
				Errors:   messages(errortypes.FatalOnly(errs)),
				Warnings: messages(errortypes.WarningOnly(errs)),
			}
			if err := encoder.Encode(output); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

// validImps returns the request restricted to the imps whose bidder params pass the bidder's
// JSON schema. Imps whose ext cannot be decoded are left for the bidder to report.
func validImps(validator openrtb_ext.BidderParamValidator, bidderName openrtb_ext.BidderName, request *openrtb2.BidRequest) (*openrtb2.BidRequest, []error) {
	var errs []error
	imps := make([]openrtb2.Imp, 0, len(request.Imp))
	for i, imp := range request.Imp {
		var bidderExt adapters.ExtImpBidder
		if err := json.Unmarshal(imp.Ext, &bidderExt); err == nil {
			if err := validator.Validate(bidderName, bidderExt.Bidder); err != nil {
				errs = append(errs, &errortypes.BadInput{
					Message: fmt.Sprintf("request.imp[%d].ext.bidder failed validation.\n%v", i, err),
				})
				continue
			}
		}
		imps = append(imps, imp)
	}

	if len(errs) == 0 {
		return request, nil
	}
	validated := *request
	validated.Imp = imps
	return &validated, errs
}

func messages(errs []error) []string {
	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return msgs
}
