/*
Package gogovtalk implements the GovTalk message envelope protocol used to
file a UK Corporation Tax (CT600) return with the HMRC Government Gateway.

# Overview

go-govtalk builds a bundled submission envelope from a set of form-box
values and attached iXBRL documents, computes the IRmark integrity digest
over the envelope body, transmits it to the gateway, and drives the
poll/accept/reject/complete lifecycle until the gateway confirms final
disposition.

# Specifications Implemented

  - GovTalk Message Envelope v2.0 (document submission protocol)
  - HMRC CT600 Company Tax Return online filing (HMRC-CT-CT600 class)
  - IRmark integrity mark (inclusive C14N over the message body, SHA-1,
    base64)

# Package Structure

The library is organized into the following packages:

	github.com/openfiling/go-govtalk/pkg/govtalk   - GovTalk envelope model, builder and response classifier
	github.com/openfiling/go-govtalk/pkg/ct600     - CT600 form-box model and IRenvelope body builder
	github.com/openfiling/go-govtalk/pkg/irmark    - IRmark integrity digest
	github.com/openfiling/go-govtalk/pkg/schema    - envelope structure validation
	github.com/openfiling/go-govtalk/internal/transport  - gateway HTTP client
	github.com/openfiling/go-govtalk/internal/submitter  - submission state machine
	github.com/openfiling/go-govtalk/internal/gateway    - local gateway emulator for testing
	github.com/openfiling/go-govtalk/internal/config     - configuration loading

# Quick Start

To build and submit a return:

	values := ct600.Values{
	    1: "Example Ltd",
	    2: "12345678",
	    3: "1234567890",
	    4: 6,
	    // ...
	}

	ret, err := ct600.NewReturn(values, principal, attachments)
	if err != nil {
	    log.Fatal(err)
	}

	ctrl := submitter.New(nil, cfg, logger)
	result, err := ctrl.Submit(ctx, ret)

One submission runs per controller invocation; poll, accept, reject and
delete round trips are sequenced internally and the full set of raw gateway
responses is retained for audit.
*/
package gogovtalk
