package main

import (
	"context"
	"encoding/hex"
	"encoding/json"

	"github.com/spf13/cobra"

	"valu/internal/claim"
	"valu/internal/endorsement"
	"valu/internal/records/service"
	"valu/internal/vdxf"
	dErrors "valu/pkg/domain-errors"
)

// RootCommand builds the valuctl command tree.
func RootCommand() *cobra.Command {
	var (
		configPath  string
		showMetrics bool
		a           *app
	)
	root := &cobra.Command{
		Use:           "valuctl",
		Short:         "build, aggregate, sign and decode valu identity records",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(configPath, cmd.ErrOrStderr())
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !showMetrics {
				return nil
			}
			return a.writeMetrics(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (yaml, toml or json)")
	root.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "write collected metrics to stderr on exit")

	appFn := func() *app { return a }
	root.AddCommand(
		claimCommand(appFn),
		recordCommand(appFn),
		endorseCommand(appFn),
		decodeCommand(appFn),
		keysCommand(appFn),
	)
	return root
}

func claimCommand(a func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "build claims in the configured format",
	}

	var (
		claimType string
		fieldsIn  string
		asUpdate  bool
	)
	build := &cobra.Command{
		Use:   "build",
		Short: "build one claim from a JSON object of string fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, fieldsIn)
			if err != nil {
				return err
			}
			fields, err := claim.ParseFields(raw)
			if err != nil {
				return err
			}
			issued, err := a().service("").IssueClaim(cmd.Context(), service.ClaimRequest{Type: claim.Type(claimType), Fields: fields})
			if err != nil {
				return err
			}
			if asUpdate {
				update, err := identityUpdate(issued)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), update)
			}
			return writeLine(cmd.OutOrStdout(), hex.EncodeToString(issued.Encoded))
		},
	}
	build.Flags().StringVarP(&claimType, "type", "t", "", "claim type, e.g. skill or employment")
	build.Flags().StringVarP(&fieldsIn, "fields", "f", "-", "fields JSON file, - for stdin")
	build.Flags().BoolVar(&asUpdate, "identity-update", false, "print the identity update JSON instead of hex")

	var (
		batchIn     string
		batchUpdate bool
	)
	aggregate := &cobra.Command{
		Use:   "aggregate",
		Short: "build a JSON array of claims and pack them under the claim key",
		Long:  "Each array element is an object holding a \"type\" and the claim's string fields.",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, batchIn)
			if err != nil {
				return err
			}
			reqs, err := parseBatch(raw)
			if err != nil {
				return err
			}
			batch, err := a().service("").IssueClaims(cmd.Context(), reqs)
			if err != nil {
				return err
			}
			if batchUpdate {
				update, err := batch.IdentityUpdate()
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), update)
			}
			out, err := batch.MultiMap.MarshalBinary()
			if err != nil {
				return err
			}
			return writeLine(cmd.OutOrStdout(), hex.EncodeToString(out))
		},
	}
	aggregate.Flags().StringVarP(&batchIn, "input", "i", "-", "claims JSON file, - for stdin")
	aggregate.Flags().BoolVar(&batchUpdate, "identity-update", false, "print the identity update JSON instead of the multi-map hex")

	cmd.AddCommand(build, aggregate)
	return cmd
}

func recordCommand(a func() *app) *cobra.Command {
	var (
		recordType string
		fieldsIn   string
		tagged     bool
		receiver   string
		asUpdate   bool
	)
	cmd := &cobra.Command{
		Use:   "record",
		Short: "build claims stored as one JSON document",
	}
	build := &cobra.Command{
		Use:   "build",
		Short: "build one document record",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, fieldsIn)
			if err != nil {
				return err
			}
			fields, err := claim.ParseFields(raw)
			if err != nil {
				return err
			}
			format := claim.FormatDocument
			if tagged {
				format = claim.FormatDocumentTagged
			}
			issued, err := a().service(format).IssueClaim(cmd.Context(), service.ClaimRequest{Type: claim.Type(recordType), Fields: fields})
			if err != nil {
				return err
			}
			switch {
			case receiver != "":
				mmr, err := issued.Record.ToMMRData(receiver)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), mmr)
			case asUpdate:
				update, err := issued.Record.ToIdentityUpdateJSON()
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), update)
			}
			return writeLine(cmd.OutOrStdout(), hex.EncodeToString(issued.Encoded))
		},
	}
	build.Flags().StringVarP(&recordType, "type", "t", "", "claim type")
	build.Flags().StringVarP(&fieldsIn, "fields", "f", "-", "fields JSON file, - for stdin")
	build.Flags().BoolVar(&tagged, "tagged", false, "write the type as its numeric tag")
	build.Flags().StringVar(&receiver, "mmr", "", "print MMR data with this receiving identity")
	build.Flags().BoolVar(&asUpdate, "identity-update", false, "print the identity update JSON instead of hex")
	cmd.AddCommand(build)
	return cmd
}

func endorseCommand(a func() *app) *cobra.Command {
	var (
		req      service.EndorsementRequest
		asJSON   bool
		asUpdate bool
	)
	cmd := &cobra.Command{
		Use:   "endorse",
		Short: "build an endorsement, signed with signer.key when --sign is set",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a().service("").Endorse(cmd.Context(), req)
			if err != nil {
				return err
			}
			switch {
			case asUpdate:
				update, err := out.Endorsement.ToIdentityUpdateJSON(endorsement.DefaultType)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), update)
			case asJSON:
				return writeJSON(cmd.OutOrStdout(), out.Endorsement)
			}
			return writeLine(cmd.OutOrStdout(), hex.EncodeToString(out.Encoded))
		},
	}
	cmd.Flags().StringVarP(&req.Endorsee, "endorsee", "e", "", "identity being endorsed")
	cmd.Flags().StringVarP(&req.Message, "message", "m", "", "endorsement text")
	cmd.Flags().StringVarP(&req.Reference, "reference", "r", "", "32-byte hex reference, random when empty")
	cmd.Flags().BoolVar(&req.Sign, "sign", false, "sign with the configured key")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of hex")
	cmd.Flags().BoolVar(&asUpdate, "identity-update", false, "print the identity update JSON")
	return cmd
}

func decodeCommand(a func() *app) *cobra.Command {
	var (
		claimType string
		format    string
	)
	cmd := &cobra.Command{
		Use:   "decode {claims|claim|record|endorsement} HEX",
		Short: "decode hex into JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := hex.DecodeString(trimHex(args[1]))
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInvalidInput, "input is not hex")
			}
			v, err := decode(cmd.Context(), a().service(""), args[0], claim.Type(claimType), claim.Format(format), b)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().StringVarP(&claimType, "type", "t", "", "claim type, for decode claim")
	cmd.Flags().StringVar(&format, "format", string(claim.FormatDocument), "record format, for decode record")
	return cmd
}

func keysCommand(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "list the registered vdxf keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, k := range a().registry.Keys() {
				if err := writeLine(cmd.OutOrStdout(), k.ID.String()+"\t"+k.Kind.String()+"\t"+k.Name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// decodedClaim is the JSON view of one stored claim.
type decodedClaim struct {
	Type   claim.Type   `json:"type"`
	Format claim.Format `json:"format"`
	Data   any          `json:"data"`
}

func decode(ctx context.Context, svc *service.Service, kind string, t claim.Type, f claim.Format, b []byte) (any, error) {
	switch kind {
	case "claims":
		stored, err := svc.DecodeClaims(ctx, b)
		if err != nil {
			return nil, err
		}
		out := make([]decodedClaim, len(stored))
		for i, st := range stored {
			out[i] = viewStored(st)
		}
		return out, nil
	case "claim":
		c, err := svc.DecodeClaim(ctx, t, b)
		if err != nil {
			return nil, err
		}
		return viewStored(claim.Stored{Claim: c}), nil
	case "record":
		r, err := svc.DecodeRecord(ctx, f, b)
		if err != nil {
			return nil, err
		}
		return viewStored(claim.Stored{Record: r}), nil
	case "endorsement":
		return svc.DecodeEndorsement(ctx, b)
	}
	return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown decode kind: "+kind)
}

func viewStored(st claim.Stored) decodedClaim {
	if st.Record != nil {
		return decodedClaim{Type: st.Record.Type, Format: st.Format(), Data: st.Record.Data}
	}
	return decodedClaim{Type: st.Claim.Type, Format: st.Format(), Data: st.Claim.Data}
}

func identityUpdate(issued *service.Issued) (*vdxf.IdentityUpdate, error) {
	if issued.Record != nil {
		return issued.Record.ToIdentityUpdateJSON()
	}
	return issued.Claim.ToIdentityUpdateJSON()
}

// parseBatch reads [{"type": "...", ...fields}, ...].
func parseBatch(raw []byte) ([]service.ClaimRequest, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "claims input must be a JSON array")
	}
	reqs := make([]service.ClaimRequest, 0, len(items))
	for _, item := range items {
		obj, err := vdxf.ReadObject(item)
		if err != nil {
			return nil, err
		}
		var t string
		if v, ok := obj.Get(claim.LabelType); ok {
			if err := json.Unmarshal(v, &t); err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "claim type must be a string")
			}
		}
		fields, err := claim.ParseFields(item)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, service.ClaimRequest{Type: claim.Type(t), Fields: fields})
	}
	return reqs, nil
}
