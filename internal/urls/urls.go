package urls

// Government scheme portals.

// PMKisan is the PM-KISAN Samman Nidhi beneficiary portal.
const PMKisan = "https://pmkisan.gov.in/"

// PMFBY is the Pradhan Mantri Fasal Bima Yojana crop insurance portal.
const PMFBY = "https://pmfby.gov.in/"

// KisanCreditCard points at the scheme finder entry for the Kisan Credit Card.
const KisanCreditCard = "https://www.myscheme.gov.in/schemes/kcc"

// SoilHealthCard is the Soil Health Card portal.
const SoilHealthCard = "https://soilhealth.dac.gov.in/"

// SchemeFinder searches every central and state scheme.
const SchemeFinder = "https://www.myscheme.gov.in/"

// Help.

// KisanCallCentre is the national farmer helpline page (1800-180-1551).
const KisanCallCentre = "https://mkisan.gov.in/"

// ProjectHome is the project's documentation site.
const ProjectHome = "https://muurk.github.io/kisan/"

// GettingStarted explains assistant providers and the config file.
const GettingStarted = "https://muurk.github.io/kisan/getting-started/"
