package analysis

const analyzerSystem = `You are an expert privacy analyst. You respond with a single JSON object and nothing else: no introductions, no markdown, no explanations outside the JSON.`

const analyzerPromptTemplate = `Conduct a rigorous analysis of the provided privacy policy. Base your analysis solely on the text of the policy.

Instructions:
1. Identify the company name and its primary domain (e.g. 'company.com') if stated.
2. List every type of Personally Identifiable Information (PII) the policy says is collected.
3. Summarize with whom user data is shared (third parties, affiliates, advertisers).
4. Summarize the data retention policy. If it is not mentioned, state that clearly.
5. For each data-sharing clause, categorize the recipient and list the data types and purpose.
6. Assign an overall risk score from 1 (very low risk) to 10 (very high risk) based on data sensitivity, sharing practices and policy clarity.
7. Write a concise overall summary for a non-technical reader, including a justification for the risk score.

Output format: a single JSON object with exactly these fields.
{
  "company_name": "string, empty if unknown",
  "company_domain": "string, empty if unknown",
  "pii_collected": ["list of PII categories, at least one entry"],
  "data_sharing_practices": "string",
  "retention_summary": "string",
  "risk_score": 1,
  "final_summary": "string",
  "sharing_clauses": [
    {"recipient": "string", "data_types": ["strings"], "purpose": "string"}
  ]
}

Privacy policy text to analyze:
%s`

const compareSystem = `You are an expert privacy analyst comparing privacy policies for a non-technical reader.`

const comparePromptTemplate = `Compare these privacy policies across key dimensions:

1. Data Collection: What data each collects
2. Data Sharing: Who they share with
3. User Rights: What rights users have
4. Security: Security measures in place
5. Retention: How long data is kept
6. Risk Level: Overall privacy risk

Policies to compare:
%s

Provide a clear comparison table and an overall recommendation for which policy is most privacy-friendly.`

const complianceSystem = `You are a privacy-regulation compliance expert. You respond with a single JSON object and nothing else.`

const compliancePromptTemplate = `Assess the privacy policy sections below for %s compliance.

Use the official regulation requirements provided as your authoritative reference. Cite specific articles or sections when identifying missing or present elements.

=== OFFICIAL %s REQUIREMENTS ===
%s

=== PRIVACY POLICY SECTIONS TO ANALYZE ===
%s

Output format: a single JSON object with exactly these fields.
{
  "is_compliant": true,
  "missing_elements": ["strings"],
  "compliant_elements": ["strings"],
  "recommendations": ["strings"],
  "compliance_score": 1
}

compliance_score runs from 1 (not compliant at all) to 10 (fully compliant).`
